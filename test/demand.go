// This file is part of RetroFE.
//
// RetroFE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RetroFE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RetroFE.  If not, see <https://www.gnu.org/licenses/>.

package test

import "testing"

// Demand tests that the condition is true. Unlike Equate a failure is a
// testing fatality. This is particularly useful when later tests depend on
// the condition. For example, testing that the lengths of two slices are
// equal before iterating over them in unison.
func Demand(t *testing.T, condition bool) {
	t.Helper()
	if !condition {
		t.Fatal("demanded condition failed")
	}
}

// DemandEquality is like Equate but a failure is a testing fatality.
func DemandEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Fatalf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}
