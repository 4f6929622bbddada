package model

// Theme names the visual treatment a card is rendered with.
type Theme string

const (
	ThemeEmerald Theme = "emerald"
	ThemeBlue    Theme = "blue"
	ThemeIndigo  Theme = "indigo"
	ThemeAmber   Theme = "amber"
	ThemeSlate   Theme = "slate"
	ThemePurple  Theme = "purple"
)

// Card is a presentation-ready recommendation. Cards are rebuilt on every
// fetch and never mutated afterwards.
type Card struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	CallToActionLabel string `json:"cta"`
	VisualTheme       Theme  `json:"theme"`
	BadgeText         string `json:"badge"`
}
