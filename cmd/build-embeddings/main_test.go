package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLaws(t *testing.T) {
	assert.Equal(t, civilLawFamily, selectLaws(nil))
	assert.Equal(t, civilLawFamily, selectLaws([]string{" ", ""}))
	assert.Equal(t, []string{"民法", "破產法"}, selectLaws([]string{"民法", " 破產法 ", "民法"}))
}

func TestCivilLawFamilyStartsWithCivilCode(t *testing.T) {
	assert.Equal(t, "民法", civilLawFamily[0])
	assert.Len(t, civilLawFamily, 19)
}
