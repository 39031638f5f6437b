// Package validator checks individual request fields that need more than a
// character whitelist: e-mail addresses, bounded integers and decimals,
// 32 character hex identifiers, person names and dates.
//
// The Valid* functions are plain predicates and never log or block:
//
//	if !validator.ValidUUID(tripID) {
//		inc := engine.Block(ctx, "Invalid trip id", waf.String(tripID))
//		return response.Blocked(inc)
//	}
//
//	validator.ValidIntegerRange("7", 1, 9)                       // true
//	validator.ValidNameDefault("Ayşe Nur O'Neil")                // true
//	validator.ValidDateTime("2025-02-30", validator.DefaultDateLayout) // false
//
// # Struct Tags
//
// ValidateStruct runs the same checks from `validate` tags and collects
// every failure into ValidationErrors:
//
//	type Passenger struct {
//		Name  string `validate:"required;name:2,50"`
//		Email string `validate:"required;email"`
//		Age   string `validate:"integer:0,120"`
//		Birth string `validate:"datetime:2006-01-02"`
//		Note  string `validate:"mode:text"`
//	}
//
// Available rules: required, email, integer:min,max, float:min,max, uuid,
// name:min,max, datetime:layout and mode:<waf mode>. Empty values skip every
// rule except required. RegisterValidator adds project-specific rules.
//
// ValidationErrors match waf.ErrMalformedField:
//
//	if errors.Is(err, waf.ErrMalformedField) {
//		// re-render the form
//	}
package validator
