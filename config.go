// Copyright 2026 Krzysztof Jurewicz
// Licensed under the BSD 3-Clause License.
// SPDX-License-Identifier: BSD-3-Clause

package traceplug

import (
	"github.com/go-playground/validator/v10"
)

// Validate is a singleton global object that performs Config validation
// of fields with `validate` tagging.
// Validation is done by https://github.com/go-playground/validator.
// You can rely on the default value, unless you use custom validators.
var Validate *validator.Validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the declarative counterpart of SetServerName and SetOTLPGrpc,
// e.g. for values coming from a deployment manifest.
type Config struct {
	// OTLPEndpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	// Empty leaves span export as it is.
	OTLPEndpoint string `validate:"omitempty,hostname_port|url"`

	// SampleFraction is the fraction of root spans to sample, 0 to 1.
	// Nil defers to OTEL_TRACES_SAMPLER(_ARG) environment variables.
	SampleFraction *float64 `validate:"omitempty,gte=0,lte=1"`

	// ServerName prefixes default span names and names the exported service.
	ServerName string `validate:"omitempty,printascii"`
}

// Apply validates the configuration and applies it.
func (c Config) Apply() error {
	if err := Validate.Struct(c); err != nil {
		return err
	}

	if c.ServerName != "" {
		SetServerName(c.ServerName)
	}
	if c.OTLPEndpoint != "" {
		fraction := unsetFraction
		if c.SampleFraction != nil {
			fraction = *c.SampleFraction
		}
		return SetOTLPGrpc(c.OTLPEndpoint, fraction)
	}
	return nil
}
