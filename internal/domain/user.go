package domain

import "time"

type User struct {
	ID           int64
	FullName     string
	DOB          time.Time
	Email        string
	Contact      string
	City         string
	State        string
	Pincode      string
	Username     string
	PasswordHash string
	AvatarPath   string
	CreatedAt    time.Time
}

// Age returns completed years between the date of birth and now.
func (u User) Age(now time.Time) int {
	if u.DOB.IsZero() {
		return 0
	}
	years := now.Year() - u.DOB.Year()
	if now.Month() < u.DOB.Month() || (now.Month() == u.DOB.Month() && now.Day() < u.DOB.Day()) {
		years--
	}
	return years
}
