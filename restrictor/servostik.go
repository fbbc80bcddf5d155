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

package restrictor

import (
	"github.com/sstallion/go-hid"

	"github.com/retrofe/retrofe/curated"
)

// Ultimarc ServoStik USB ids.
const (
	servoStikVendor  = 0xd209
	servoStikProduct = 0x1700
)

// servostik is the Ultimarc ServoStik motorised restrictor plate.
type servostik struct {
	dev *hid.Device
	way int
}

// probeServoStik opens the first ServoStik control interface on the bus.
func probeServoStik() (Restrictor, error) {
	if err := hid.Init(); err != nil {
		return nil, curated.Errorf("restrictor: servostik: %v", err)
	}

	dev, err := hid.OpenFirst(servoStikVendor, servoStikProduct)
	if err != nil {
		return nil, curated.Errorf("restrictor: servostik: no device found")
	}

	s := &servostik{dev: dev}
	if err := s.SetWay(8); err != nil {
		dev.Close()
		return nil, err
	}
	return s, nil
}

// Name implements the Restrictor interface.
func (s *servostik) Name() string {
	return "ServoStik"
}

// SetWay implements the Restrictor interface.
func (s *servostik) SetWay(way int) error {
	var mode byte
	switch way {
	case 4:
		mode = 0x00
	case 8:
		mode = 0x01
	default:
		return curated.Errorf("restrictor: servostik: unsupported way: %d", way)
	}

	// control report: report id 0, 0xdd selects the restrictor plate
	report := []byte{0x00, 0xdd, 0x00, mode}
	if _, err := s.dev.SendFeatureReport(report); err != nil {
		return curated.Errorf("restrictor: servostik: %v", err)
	}
	s.way = way
	return nil
}

// Way implements the Restrictor interface.
func (s *servostik) Way() int {
	return s.way
}

// Close implements the Restrictor interface.
func (s *servostik) Close() error {
	return s.dev.Close()
}
