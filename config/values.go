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

package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/retrofe/retrofe/curated"
)

// Value is the value of a live setting. The underlying storage is atomic
// so values can be read from any goroutine without locks.
type Value interface {
	fmt.Stringer

	// Set the value from a native or string representation.
	Set(value interface{}) error

	// Get the value as an interface{}. Use the concrete type's accessor
	// for the native type.
	Get() interface{}
}

// Bool is a live boolean setting.
type Bool struct {
	value atomic.Value // bool

	// hookPost is called after the value changes.
	hookPost func(value bool) error
}

// SetHookPost sets the callback function called after the value changes.
func (p *Bool) SetHookPost(f func(value bool) error) {
	p.hookPost = f
}

func (p *Bool) String() string {
	return fmt.Sprintf("%v", p.IsSet())
}

// Set the boolean from a bool or from a string.
func (p *Bool) Set(v interface{}) error {
	switch v := v.(type) {
	case bool:
		p.value.Store(v)
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "on", "1":
			p.value.Store(true)
		case "false", "no", "off", "0":
			p.value.Store(false)
		default:
			return curated.Errorf("config: cannot convert %s to bool", v)
		}
	default:
		return curated.Errorf("config: cannot convert %T to bool", v)
	}

	if p.hookPost != nil {
		return p.hookPost(p.IsSet())
	}
	return nil
}

// Get returns the raw value.
func (p *Bool) Get() interface{} {
	return p.IsSet()
}

// IsSet returns the native value. An unset Bool is false.
func (p *Bool) IsSet() bool {
	v, ok := p.value.Load().(bool)
	return ok && v
}

// String is a live string setting.
type String struct {
	value    atomic.Value // string
	hookPost func(value string) error
}

// SetHookPost sets the callback function called after the value changes.
func (p *String) SetHookPost(f func(value string) error) {
	p.hookPost = f
}

func (p *String) String() string {
	v, _ := p.value.Load().(string)
	return v
}

// Set the string from any value via its string representation.
func (p *String) Set(v interface{}) error {
	p.value.Store(fmt.Sprintf("%v", v))
	if p.hookPost != nil {
		return p.hookPost(p.String())
	}
	return nil
}

// Get returns the raw value.
func (p *String) Get() interface{} {
	return p.String()
}

// Int is a live integer setting.
type Int struct {
	value    atomic.Value // int
	hookPost func(value int) error
}

// SetHookPost sets the callback function called after the value changes.
func (p *Int) SetHookPost(f func(value int) error) {
	p.hookPost = f
}

func (p *Int) String() string {
	return strconv.Itoa(p.Value())
}

// Set the integer from an int or from a string.
func (p *Int) Set(v interface{}) error {
	switch v := v.(type) {
	case int:
		p.value.Store(v)
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return curated.Errorf("config: cannot convert %s to int", v)
		}
		p.value.Store(i)
	default:
		return curated.Errorf("config: cannot convert %T to int", v)
	}

	if p.hookPost != nil {
		return p.hookPost(p.Value())
	}
	return nil
}

// Get returns the raw value.
func (p *Int) Get() interface{} {
	return p.Value()
}

// Value returns the native value. An unset Int is zero.
func (p *Int) Value() int {
	v, _ := p.value.Load().(int)
	return v
}

// Float is a live float setting.
type Float struct {
	value    atomic.Value // float64
	hookPost func(value float64) error
}

// SetHookPost sets the callback function called after the value changes.
func (p *Float) SetHookPost(f func(value float64) error) {
	p.hookPost = f
}

func (p *Float) String() string {
	return strconv.FormatFloat(p.Value(), 'f', -1, 64)
}

// Set the float from a float64, an int or from a string.
func (p *Float) Set(v interface{}) error {
	switch v := v.(type) {
	case float64:
		p.value.Store(v)
	case int:
		p.value.Store(float64(v))
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return curated.Errorf("config: cannot convert %s to float", v)
		}
		p.value.Store(f)
	default:
		return curated.Errorf("config: cannot convert %T to float", v)
	}

	if p.hookPost != nil {
		return p.hookPost(p.Value())
	}
	return nil
}

// Get returns the raw value.
func (p *Float) Get() interface{} {
	return p.Value()
}

// Value returns the native value. An unset Float is zero.
func (p *Float) Value() float64 {
	v, _ := p.value.Load().(float64)
	return v
}
