// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package naming implements the currency name/code/description validator:
// shape rules, the reserved "NXT" name, and duplicate detection against the
// active currency registry.
package naming

import (
	"strings"

	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/errors"
	"github.com/monetary-system/msnode/pkg/money/currency"
)

// Validator validates currency naming against configured shape constants
// and a currency.Registry for duplicate detection.
type Validator struct {
	cfg      config.Naming
	registry currency.Registry
}

// New builds a Validator bound to cfg and registry.
func New(cfg config.Naming, registry currency.Registry) *Validator {
	return &Validator{cfg: cfg, registry: registry}
}

// Validate runs the full naming rule set.
func (v *Validator) Validate(name, code, description string) error {
	if len(name) < v.cfg.MinNameLength || len(name) > v.cfg.MaxNameLength {
		return errors.NotValid("name length out of bounds")
	}
	if len(code) != v.cfg.CodeLength {
		return errors.NotValid("code length must be %d", v.cfg.CodeLength)
	}
	if len(description) > v.cfg.MaxDescLength {
		return errors.NotValid("description too long")
	}

	normalizedName := strings.ToLower(name)
	if !allCharsIn(normalizedName, v.cfg.Alphabet) {
		return errors.NotValid("name contains disallowed characters")
	}
	if !allCharsIn(code, v.cfg.AllowedCodeLets) {
		return errors.NotValid("code contains disallowed characters")
	}

	if code == "NXT" || normalizedName == "nxt" {
		return errors.NotValid("name already used")
	}

	if dup, err := v.duplicate(normalizedName, code); err != nil {
		return err
	} else if dup {
		return errors.NotCurrentlyValid("name or code already in use")
	}

	return nil
}

func (v *Validator) duplicate(normalizedName, code string) (bool, error) {
	if v.registry == nil {
		return false, nil
	}

	if c, err := v.registry.ByLowercaseName(normalizedName); err != nil {
		return false, errors.StorageFailure(err, "naming registry lookup by name")
	} else if c != nil {
		return true, nil
	}

	// name-as-code: an active currency whose code equals the uppercase
	// form of this name.
	if c, err := v.registry.ByCode(strings.ToUpper(normalizedName)); err != nil {
		return false, errors.StorageFailure(err, "naming registry lookup by name-as-code")
	} else if c != nil {
		return true, nil
	}

	if c, err := v.registry.ByCode(code); err != nil {
		return false, errors.StorageFailure(err, "naming registry lookup by code")
	} else if c != nil {
		return true, nil
	}

	// code-as-lowercase-name: an active currency whose lowercase name
	// equals this code lowercased.
	if c, err := v.registry.ByLowercaseName(strings.ToLower(code)); err != nil {
		return false, errors.StorageFailure(err, "naming registry lookup by code-as-name")
	} else if c != nil {
		return true, nil
	}

	return false, nil
}

func allCharsIn(s, alphabet string) bool {
	for _, r := range s {
		if strings.IndexRune(alphabet, r) < 0 {
			return false
		}
	}
	return true
}
