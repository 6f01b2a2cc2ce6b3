package domain

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
)

// Definition documents arrive from stores and transports as generic
// map[string]any (JSON-Schema-compatible structured text). The decoders
// below convert them into typed entities, tolerating the representational
// drift of documents written by older versions.

func decoderConfig(target any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result: target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToUUIDHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	}
}

func stringToUUIDHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(uuid.UUID{}) {
		return data, nil
	}
	return uuid.Parse(data.(string))
}

func decode(doc map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(decoderConfig(target))
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

// DecodeSchema converts a schema definition document.
func DecodeSchema(doc map[string]any) (*schema.Schema, error) {
	var s schema.Schema
	if err := decode(doc, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeCrosswalk converts a crosswalk definition document, re-parsing the
// persisted action scripts.
func DecodeCrosswalk(doc map[string]any) (*Crosswalk, error) {
	var raw struct {
		ID                uuid.UUID        `mapstructure:"id"`
		Name              string           `mapstructure:"name"`
		SourceSchema      map[string]any   `mapstructure:"source_schema"`
		DestinationSchema map[string]any   `mapstructure:"destination_schema"`
		Actions           []string         `mapstructure:"actions"`
		Version           []schema.Version `mapstructure:"version"`
	}
	if err := decode(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode crosswalk: %w", err)
	}

	source, err := DecodeSchema(raw.SourceSchema)
	if err != nil {
		return nil, err
	}
	destination, err := DecodeSchema(raw.DestinationSchema)
	if err != nil {
		return nil, err
	}
	actions, err := script.ParseAll(raw.Actions)
	if err != nil {
		return nil, fmt.Errorf("crosswalk %q: %w", raw.Name, err)
	}

	return &Crosswalk{
		ID:                raw.ID,
		Name:              raw.Name,
		SourceSchema:      source,
		DestinationSchema: destination,
		Actions:           actions,
		Version:           raw.Version,
	}, nil
}

// DecodeTransform converts a transform audit document.
func DecodeTransform(doc map[string]any) (*Transform, error) {
	var raw struct {
		ID                  uuid.UUID        `mapstructure:"id"`
		Name                string           `mapstructure:"name"`
		Crosswalk           map[string]any   `mapstructure:"crosswalk"`
		SourceChecksum      string           `mapstructure:"source_checksum"`
		DestinationChecksum string           `mapstructure:"destination_checksum"`
		Citation            Citation         `mapstructure:"citation"`
		Created             time.Time        `mapstructure:"created"`
		Version             []schema.Version `mapstructure:"version"`
	}
	if err := decode(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode transform: %w", err)
	}
	cw, err := DecodeCrosswalk(raw.Crosswalk)
	if err != nil {
		return nil, err
	}
	return &Transform{
		ID:                  raw.ID,
		Name:                raw.Name,
		Crosswalk:           cw,
		SourceChecksum:      raw.SourceChecksum,
		DestinationChecksum: raw.DestinationChecksum,
		Citation:            raw.Citation,
		Created:             raw.Created,
		Version:             raw.Version,
	}, nil
}
