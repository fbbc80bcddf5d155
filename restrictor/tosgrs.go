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
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/retrofe/retrofe/curated"
)

// the TOSGRS restrictor answers an identify request with a banner
// containing this string.
const tosgrsBanner = "TOSGRS"

// tosgrs is the serial TOS gun/gate restrictor.
type tosgrs struct {
	port serial.Port
	way  int
}

// probeTOSGRS scans the serial ports for a device that identifies as a
// TOSGRS. Every candidate port is opened briefly; ports that belong to
// other devices ignore the identify request and time out.
func probeTOSGRS() (Restrictor, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, curated.Errorf("restrictor: tosgrs: %v", err)
	}

	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	for _, name := range ports {
		port, err := serial.Open(name, mode)
		if err != nil {
			continue
		}

		if err := port.SetReadTimeout(500 * time.Millisecond); err != nil {
			port.Close()
			continue
		}

		if _, err := port.Write([]byte("id\r")); err != nil {
			port.Close()
			continue
		}

		buf := make([]byte, 64)
		n, err := port.Read(buf)
		if err != nil || n == 0 || !strings.Contains(string(buf[:n]), tosgrsBanner) {
			port.Close()
			continue
		}

		t := &tosgrs{port: port}
		if err := t.SetWay(8); err != nil {
			port.Close()
			continue
		}
		return t, nil
	}

	return nil, curated.Errorf("restrictor: tosgrs: no device found")
}

// Name implements the Restrictor interface.
func (t *tosgrs) Name() string {
	return "TOSGRS"
}

// SetWay implements the Restrictor interface.
func (t *tosgrs) SetWay(way int) error {
	if way != 4 && way != 8 {
		return curated.Errorf("restrictor: tosgrs: unsupported way: %d", way)
	}
	if _, err := t.port.Write([]byte(fmt.Sprintf("way %d\r", way))); err != nil {
		return curated.Errorf("restrictor: tosgrs: %v", err)
	}
	t.way = way
	return nil
}

// Way implements the Restrictor interface.
func (t *tosgrs) Way() int {
	return t.way
}

// Close implements the Restrictor interface.
func (t *tosgrs) Close() error {
	return t.port.Close()
}
