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

package resources

// the cyclic mask applied by Obfuscate. not a secret, just a discouragement
// against hand-editing the hi-score files.
var obfuscationMask = []byte("RETROFE")

// Obfuscate applies the cyclic XOR mask to data in place and returns it.
// The transform is involutive. Applying it twice restores the input, so
// Deobfuscate is the same operation.
func Obfuscate(data []byte) []byte {
	for i := range data {
		data[i] ^= obfuscationMask[i%len(obfuscationMask)]
	}
	return data
}

// Deobfuscate reverses Obfuscate.
func Deobfuscate(data []byte) []byte {
	return Obfuscate(data)
}
