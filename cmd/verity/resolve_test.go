package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPropertyPath(t *testing.T) {
	tests := []struct {
		in        string
		subsystem string
		property  string
		wantErr   bool
	}{
		{in: "chassis.mass", subsystem: "chassis", property: "mass"},
		{in: "v1.2 frame.mass", subsystem: "v1.2 frame", property: "mass"},
		{in: "mass", wantErr: true},
		{in: ".mass", wantErr: true},
		{in: "chassis.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, p, err := splitPropertyPath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.subsystem, s)
			assert.Equal(t, tt.property, p)
		})
	}
}

func TestRunResolve(t *testing.T) {
	path := rover(t, "10kg")
	opts := resolveOptions{CommonOptions: CommonOptions{Format: "text"}, ReferenceScope: "narrow"}

	var out bytes.Buffer
	require.NoError(t, runResolve(testContext(t), path, "Rover.mass", opts, &out))
	assert.Contains(t, out.String(), "Rover.mass = 2 kg")
	assert.Contains(t, out.String(), "sum children (aggregate)")

	opts.Format = "json"
	out.Reset()
	require.NoError(t, runResolve(testContext(t), path, "body.mass", opts, &out))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "body", resp["subsystem"])
	assert.Equal(t, "literal", resp["kind"])
}

func TestRunResolve_Errors(t *testing.T) {
	path := rover(t, "10kg")

	tests := []struct {
		name   string
		target string
		opts   resolveOptions
	}{
		{"unknown subsystem", "tail.mass", resolveOptions{CommonOptions: CommonOptions{Format: "text"}}},
		{"no property", "body", resolveOptions{CommonOptions: CommonOptions{Format: "text"}}},
		{"bad format", "body.mass", resolveOptions{CommonOptions: CommonOptions{Format: "sarif"}}},
		{"bad scope", "body.mass", resolveOptions{CommonOptions: CommonOptions{Format: "text"}, ReferenceScope: "wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, runResolve(testContext(t), path, tt.target, tt.opts, &out))
		})
	}
}
