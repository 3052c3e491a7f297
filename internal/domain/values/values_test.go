package values

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/verity/internal/domain/quantity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{"info", "info", SevInfo, false},
		{"information", "Information", SevInfo, false},
		{"warn", "warn", SevWarn, false},
		{"warning", "WARNING", SevWarn, false},
		{"error", "error", SevError, false},
		{"whitespace", "  Error  ", SevError, false},
		{"empty", "", Severity{}, true},
		{"invalid", "critical", Severity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, err := NewSeverity(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, sev.Equals(tt.want))
			}
		})
	}
}

func Test_Severity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
		short    string
	}{
		{SevInfo, "Information", "info"},
		{SevWarn, "Warning", "warn"},
		{SevError, "Error", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
			assert.Equal(t, tt.short, tt.severity.Short())
		})
	}
}

func Test_Severity_Ordering(t *testing.T) {
	assert.True(t, SevError.IsHigherThan(SevWarn))
	assert.True(t, SevWarn.IsHigherThan(SevInfo))
	assert.False(t, SevInfo.IsHigherThan(SevInfo))
	assert.True(t, SevInfo.IsHigherOrEqual(SevInfo))
	assert.Less(t, SevInfo.Level(), SevError.Level())
}

func Test_Severity_Marshaling(t *testing.T) {
	data, err := json.Marshal(SevWarn)
	require.NoError(t, err)
	assert.Equal(t, `"Warning"`, string(data))

	var sev Severity
	require.NoError(t, json.Unmarshal([]byte(`"error"`), &sev))
	assert.Equal(t, SevError, sev)

	out, err := yaml.Marshal(map[string]Severity{"severity": SevInfo})
	require.NoError(t, err)
	assert.Contains(t, string(out), "severity: Information")

	require.NoError(t, sev.UnmarshalText([]byte("warn")))
	assert.Equal(t, SevWarn, sev)
}

func Test_RunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.False(t, a.IsZero())
	assert.False(t, a.Equals(b))
	assert.Len(t, a.Short(), 8)

	valid := "123e4567-e89b-12d3-a456-426614174000"
	id, err := ParseRunID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, id.String())

	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	var back RunID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(id))
}

func Test_ParseOperator(t *testing.T) {
	for _, op := range []string{"eq", "lt", "lte", "gt", "GTE"} {
		t.Run(op, func(t *testing.T) {
			_, err := ParseOperator(op)
			assert.NoError(t, err)
		})
	}

	_, err := ParseOperator("ne")
	assert.Error(t, err)
}

func Test_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    string
		wantErr bool
	}{
		{"bool", true, "true", false},
		{"bool string", "FALSE", "false", false},
		{"int", 3, "3", false},
		{"float", 2.5, "2.5", false},
		{"quantity string", "2000mm", "2000 mm", false},
		{"uncertain string", "12mm +/- 1cm", "12 mm +/- 1 cm", false},
		{"formula rejected", "a.b + 1m", "", true},
		{"syntax error", "2m +", "", true},
		{"unknown unit", "3furlong", "", true},
		{"unsupported type", []int{1}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func Test_NormalizeIn_CustomRegistry(t *testing.T) {
	reg := quantity.DefaultRegistry().Clone()
	m, err := quantity.DefaultRegistry().Parse(201.168, "m", 1)
	require.NoError(t, err)
	require.NoError(t, reg.Define("furlong", m, false))

	v, err := NormalizeIn(reg, "2furlong")
	require.NoError(t, err)
	assert.Equal(t, "2 furlong", v.String())
}

func Test_Operator_Apply(t *testing.T) {
	mustValue := func(raw any) Value {
		v, err := Normalize(raw)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name      string
		actual    any
		op        Operator
		threshold any
		want      bool
		wantErr   bool
	}{
		{"equal across units", "2000mm", OpEq, "2m", true, false},
		{"count adopts canonical unit", "2000mm", OpEq, 2.0, true, false},
		{"count adopts on the left", 2, OpLte, "2000mm", true, false},
		{"lte pass", "40kg", OpLte, "50kg", true, false},
		{"lte fail", "40kg", OpLte, "30kg", false, false},
		{"lt boundary", "30kg", OpLt, "30000g", false, false},
		{"gt", "1km", OpGt, "999m", true, false},
		{"gte boundary", "1km", OpGte, "1000m", true, false},
		{"uncertain compares central value", "12mm +/- 1cm", OpEq, "1.2cm", true, false},
		{"bool eq", true, OpEq, "true", true, false},
		{"bool neq", false, OpEq, true, false, false},
		{"bool lt rejected", true, OpLt, true, false, true},
		{"bool vs quantity", true, OpEq, "1m", false, true},
		{"dimension mismatch", "1m", OpEq, "1s", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op.Apply(mustValue(tt.actual), mustValue(tt.threshold))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Align(t *testing.T) {
	a, err := Normalize("40000g")
	require.NoError(t, err)
	b, err := Normalize(30)
	require.NoError(t, err)

	ca, cb := Align(a, b)
	assert.Equal(t, "40 kg", ca.String())
	assert.Equal(t, "30 kg", cb.String())
}

func Test_Value_Equals(t *testing.T) {
	a, _ := Normalize("2000mm")
	b, _ := Normalize("2m")
	c, _ := Normalize(true)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, c.Equals(BoolValue(true)))
}
