// Package chat answers a fixed set of inventory questions.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/vehicles"
)

const (
	endedText    = "Conversation ended. Thank you for using EasyRent Assistant!"
	greetingText = "Hi there! How can I assist you today?"
	fallbackText = "Sorry, I can only answer questions about vehicle features, pricing and availability. Try one of these:"
	emptyText    = "No vehicles match that right now."
)

// Prompts are the suggestions offered after a greeting or an unknown message.
var Prompts = []string{
	"SUV features",
	"Sedan pricing",
	"Motorcycle availability",
	"Hatchback features",
	"MPV pricing",
	"Other Availabilities",
}

var greetings = map[string]bool{"hello": true, "hi": true, "hey": true, "hii": true}

var vehicleTypes = map[string]string{
	"suv":        "SUV",
	"sedan":      "Sedan",
	"motorcycle": "Motorcycle",
	"hatchback":  "Hatchback",
	"mpv":        "MPV",
}

type mode int

const (
	modeInfo mode = iota
	modeFeatures
	modePricing
	modeAvailability
)

var modes = map[string]mode{
	"":             modeInfo,
	"info":         modeInfo,
	"features":     modeFeatures,
	"pricing":      modePricing,
	"price":        modePricing,
	"availability": modeAvailability,
}

type Card struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	DisplayText string `json:"displayText"`
}

type Reply struct {
	Text     string   `json:"text,omitempty"`
	Prompts  []string `json:"prompts,omitempty"`
	Vehicles []Card   `json:"vehicles,omitempty"`
	Ended    bool     `json:"ended"`
}

type Assistant struct {
	vehicles vehicles.VehicleUseCase
}

func NewAssistant(v vehicles.VehicleUseCase) *Assistant {
	return &Assistant{vehicles: v}
}

// Answer resolves message against the known intents. Only catalog lookups
// can fail.
func (a *Assistant) Answer(ctx context.Context, message string) (*Reply, error) {
	msg := normalise(message)

	switch {
	case msg == "stop":
		return &Reply{Text: endedText, Ended: true}, nil
	case greetings[msg]:
		return &Reply{Text: greetingText, Prompts: Prompts}, nil
	}

	typeName, m, ok := parseInventoryQuestion(msg)
	if !ok {
		return &Reply{Text: fallbackText, Prompts: Prompts}, nil
	}

	all, err := a.vehicles.List(ctx, vehicles.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load vehicles for chat: %w", err)
	}

	cards := make([]Card, 0)
	for _, v := range all {
		if typeName == "" {
			if strings.EqualFold(v.Type, "motorcycle") {
				continue
			}
		} else if !strings.EqualFold(v.Type, typeName) {
			continue
		}
		cards = append(cards, Card{ID: v.ID, Name: v.Name, Image: v.ImageURL, DisplayText: display(v, m)})
	}
	if len(cards) == 0 {
		return &Reply{Text: emptyText, Prompts: Prompts}, nil
	}
	return &Reply{Vehicles: cards}, nil
}

// parseInventoryQuestion accepts "<type>", "<type> <mode>" and
// "other availabilities". An empty type name means every non-motorcycle.
func parseInventoryQuestion(msg string) (string, mode, bool) {
	if msg == "other availabilities" {
		return "", modeInfo, true
	}

	kind, rest, _ := strings.Cut(msg, " ")
	typeName, ok := vehicleTypes[kind]
	if !ok {
		return "", 0, false
	}
	m, ok := modes[rest]
	if !ok {
		return "", 0, false
	}
	return typeName, m, true
}

func display(v domain.Vehicle, m mode) string {
	features := fmt.Sprintf("%d seats | %s | %s | %s km/l", v.SeatingCapacity, v.Transmission, v.FuelType, number(v.Mileage))
	price := "₹" + number(v.PricePerDay) + "/day"
	availability := "Not Available"
	if v.Available {
		availability = "Available"
	}

	switch m {
	case modeFeatures:
		return features
	case modePricing:
		return price
	case modeAvailability:
		return availability
	default:
		return features + " | " + price + " | " + availability
	}
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
