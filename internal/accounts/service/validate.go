package service

import (
	"slices"
	"unicode/utf8"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
)

// Field limits of the public API.
const (
	LoginMinLength = 2
	LoginMaxLength = 40
	NameMinLength  = 2
	NameMaxLength  = 40
	MetaMaxLength  = 512
)

// checkLength fails with value_empty for blank values and value_invalid
// when the rune count is outside [min, max]. A max of zero is unbounded.
func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return domain.NewError(domain.KindValueEmpty, domain.LocBody, field)
	}
	if n < min || (max > 0 && n > max) {
		return domain.NewError(domain.KindValueInvalid, domain.LocBody, field)
	}
	return nil
}

func checkNames(first, last string) error {
	if err := checkLength("first_name", first, NameMinLength, NameMaxLength); err != nil {
		return err
	}
	return checkLength("last_name", last, NameMinLength, NameMaxLength)
}

// editableMeta lists account meta keys the profile endpoints may write.
// The picture is managed by its own operations.
var editableMeta = []string{domain.MetaSummary, domain.MetaContacts}

func checkMeta(meta map[string]string) error {
	for key, value := range meta {
		if !slices.Contains(editableMeta, key) {
			return domain.NewError(domain.KindValueInvalid, domain.LocBody, key)
		}
		if utf8.RuneCountInString(value) > MetaMaxLength {
			return domain.NewError(domain.KindValueInvalid, domain.LocBody, key)
		}
	}
	return nil
}
