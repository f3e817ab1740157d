package billing

import "github.com/google/uuid"

// PlanTag - тег тарифа в леджере платежей.
type PlanTag string

const (
	PlanStandard PlanTag = "standard"
	PlanPremium  PlanTag = "premium"
)

// TokenKind различает именованный план и покупку отдельного модуля
// (модуль идентифицируется row id каталога, т.е. UUID).
type TokenKind int

const (
	TokenNamed TokenKind = iota
	TokenModuleRef
)

// PlanToken - разобранный на границе токен плана из метаданных
// checkout-сессии. Дальше по коду ходит только он, не сырая строка.
type PlanToken struct {
	Kind TokenKind
	Raw  string
}

// Именованные планы. Все upsell/add-on планы сознательно premium.
var namedPlans = map[string]PlanTag{
	"standard":        PlanStandard,
	"premium":         PlanPremium,
	"pitch-mastery":   PlanPremium,
	"interview-prep":  PlanPremium,
	"leadership-plus": PlanPremium,
}

// ParseToken классифицирует сырой токен ровно один раз.
func ParseToken(raw string) PlanToken {
	if _, err := uuid.Parse(raw); err == nil {
		return PlanToken{Kind: TokenModuleRef, Raw: raw}
	}
	return PlanToken{Kind: TokenNamed, Raw: raw}
}

// Resolve возвращает тег тарифа для токена.
//
// Premium по умолчанию - это осознанный бизнес-дефолт, в том числе для
// нераспознанных токенов. Не "чинить".
func Resolve(token PlanToken) PlanTag {
	switch token.Kind {
	case TokenModuleRef:
		// Отдельно купленный модуль всегда тарифицируется как premium
		return PlanPremium
	default:
		if tag, ok := namedPlans[token.Raw]; ok {
			return tag
		}
		return PlanPremium
	}
}

// ResolvePlan - удобная обертка "сырая строка -> тег".
func ResolvePlan(raw string) PlanTag {
	return Resolve(ParseToken(raw))
}

// AmountMinorFor - цена тарифа в минорных единицах валюты.
func AmountMinorFor(tag PlanTag) int64 {
	if tag == PlanStandard {
		return 29900
	}
	return 49900
}
