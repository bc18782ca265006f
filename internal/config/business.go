package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func defaultBusiness() BusinessConfig {
	return BusinessConfig{
		Name:         getEnv("BUSINESS_NAME", "MULTIPLANET"),
		AddressLines: []string{
			getEnv("BUSINESS_ADDRESS", "Bº El Centro, Contiguo A Edificio Makalo,"),
			getEnv("BUSINESS_CITY", "Tocoa, Colón"),
		},
		Phones:        getEnvAsList("BUSINESS_PHONES"),
		Email:         getEnv("BUSINESS_EMAIL", "multiplanettocoa@yahoo.com"),
		LogoURL:       os.Getenv("BUSINESS_LOGO_URL"),
		DefaultLayout: getEnv("RECEIPT_DEFAULT_LAYOUT", "a5"),
		Currency:      getEnv("BUSINESS_CURRENCY", "L"),
		Timezone:      getEnv("BUSINESS_TIMEZONE", "America/Tegucigalpa"),
		ProfileFile:   os.Getenv("BUSINESS_PROFILE_FILE"),
		Disclaimer: []string{
			"Nota: La empresa no se hace responsable por equipos con mas de 45 días",
			"sin reclamar desde la fecha de ingreso.",
			"PARA RECLAMO DE SU ARTÍCULO PRESENTAR FACTURA CORRESPONDIENTE",
		},
	}
}

// loadProfileFile overlays the YAML business profile, when one is configured.
func (b *BusinessConfig) loadProfileFile() error {
	if len(b.Phones) == 0 {
		b.Phones = []string{"3171-3287", "9647-3966"}
	}
	if b.ProfileFile == "" {
		return nil
	}
	content, err := os.ReadFile(b.ProfileFile)
	if err != nil {
		return fmt.Errorf("read business profile: %w", err)
	}
	return b.mergeYAML(content)
}

func (b *BusinessConfig) mergeYAML(content []byte) error {
	var file BusinessConfig
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse business profile: %w", err)
	}
	if file.Name != "" {
		b.Name = file.Name
	}
	if len(file.AddressLines) > 0 {
		b.AddressLines = file.AddressLines
	}
	if len(file.Phones) > 0 {
		b.Phones = file.Phones
	}
	if file.Email != "" {
		b.Email = file.Email
	}
	if file.LogoURL != "" {
		b.LogoURL = file.LogoURL
	}
	if len(file.Disclaimer) > 0 {
		b.Disclaimer = file.Disclaimer
	}
	if file.DefaultLayout != "" {
		b.DefaultLayout = file.DefaultLayout
	}
	if file.Currency != "" {
		b.Currency = file.Currency
	}
	if file.Timezone != "" {
		b.Timezone = file.Timezone
	}
	return nil
}

// Location returns the shop's time zone, falling back to UTC.
func (b BusinessConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
