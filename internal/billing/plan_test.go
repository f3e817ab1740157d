package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlan(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  PlanTag
	}{
		{"standard plan stays standard", "standard", PlanStandard},
		{"named premium plan", "premium", PlanPremium},
		{"named upsell plan maps to premium", "pitch-mastery", PlanPremium},
		{"module purchased by row id maps to premium", "3fa85f64-5717-4562-b3fc-2c963f66afa6", PlanPremium},
		{"unknown token defaults to premium", "unknown-token", PlanPremium},
		{"empty token defaults to premium", "", PlanPremium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePlan(tt.token))
		})
	}
}

func TestParseToken(t *testing.T) {
	tok := ParseToken("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	assert.Equal(t, TokenModuleRef, tok.Kind)

	tok = ParseToken("standard")
	assert.Equal(t, TokenNamed, tok.Kind)

	// UUID без дефисов тоже парсится google/uuid - считается ссылкой на модуль
	tok = ParseToken("3fa85f6457174562b3fc2c963f66afa6")
	assert.Equal(t, TokenModuleRef, tok.Kind)
}
