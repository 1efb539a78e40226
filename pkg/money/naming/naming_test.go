// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monetary-system/msnode/pkg/config"
	"github.com/monetary-system/msnode/pkg/errors"
	"github.com/monetary-system/msnode/pkg/money/currency"
)

func testConfig() config.Naming {
	return config.Default().Naming
}

type fakeRegistry struct {
	byName map[string]*currency.Currency
	byCode map[string]*currency.Currency
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{byName: map[string]*currency.Currency{}, byCode: map[string]*currency.Currency{}}
}

func (f *fakeRegistry) ByID(uint64) (*currency.Currency, error) { return nil, nil }

func (f *fakeRegistry) ByLowercaseName(name string) (*currency.Currency, error) {
	return f.byName[name], nil
}

func (f *fakeRegistry) ByCode(code string) (*currency.Currency, error) {
	return f.byCode[code], nil
}

func TestValidateAcceptsWellFormedName(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	assert.NoError(t, v.Validate("testcoin", "TST", "a test currency"))
}

func TestValidateRejectsShortName(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	err := v.Validate("ab", "TST", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}

func TestValidateRejectsLongName(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	err := v.Validate("abcdefghijk", "TST", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}

func TestValidateRejectsWrongCodeLength(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	err := v.Validate("testcoin", "TOOLONG", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}

func TestValidateRejectsDisallowedCharacters(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	err := v.Validate("test coin", "TST", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}

func TestValidateRejectsReservedNXTName(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())

	err := v.Validate("nxt", "ABC", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))

	err = v.Validate("testcoin", "NXT", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}

func TestValidateRejectsDuplicateName(t *testing.T) {
	reg := newFakeRegistry()
	reg.byName["testcoin"] = &currency.Currency{ID: 1, Name: "testcoin"}

	v := New(testConfig(), reg)
	err := v.Validate("testcoin", "TST", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotCurrentlyValid))
}

func TestValidateRejectsDuplicateCode(t *testing.T) {
	reg := newFakeRegistry()
	reg.byCode["TST"] = &currency.Currency{ID: 1, Code: "TST"}

	v := New(testConfig(), reg)
	err := v.Validate("othercoin", "TST", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotCurrentlyValid))
}

func TestValidateRejectsNameAsExistingCode(t *testing.T) {
	reg := newFakeRegistry()
	reg.byCode["TST"] = &currency.Currency{ID: 1, Code: "TST"}

	v := New(testConfig(), reg)
	// name "tst" uppercases to the existing code "TST".
	err := v.Validate("tst", "ABC", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotCurrentlyValid))
}

func TestValidateRejectsTooLongDescription(t *testing.T) {
	v := New(testConfig(), newFakeRegistry())
	long := make([]byte, testConfig().MaxDescLength+1)
	for i := range long {
		long[i] = 'a'
	}
	err := v.Validate("testcoin", "TST", string(long))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotValid))
}
