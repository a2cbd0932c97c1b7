/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package charset

// danMarc2High is the right half of the DanMarc2 table (ISO 5426). The left half is ISO 646.
var danMarc2High = map[byte]rune{
	0xa1: '¡', 0xa2: '„', 0xa3: '£', 0xa5: '¥', 0xa6: '†', 0xa7: '§',
	0xa8: '′', 0xa9: '‘', 0xaa: '“', 0xab: '«', 0xac: '♭', 0xad: '©', 0xae: '℗', 0xaf: '®',
	0xb0: 'ʻ', 0xb1: 'ʼ', 0xb2: '‚', 0xb6: '‡', 0xb7: '·', 0xb8: '″', 0xb9: '’',
	0xba: '”', 0xbb: '»', 0xbc: '♯', 0xbd: 'ʹ', 0xbe: 'ʺ', 0xbf: '¿',

	// combining marks
	0xc0: '\u0309', 0xc1: '\u0300', 0xc2: '\u0301', 0xc3: '\u0302', 0xc4: '\u0303',
	0xc5: '\u0304', 0xc6: '\u0306', 0xc7: '\u0307', 0xc8: '\u0308', 0xca: '\u030A',
	0xcb: '\u0315', 0xcc: '\u0312', 0xcd: '\u030B', 0xce: '\u031B', 0xcf: '\u030C',
	0xd0: '\u0327', 0xd1: '\u031C', 0xd2: '\u0326', 0xd3: '\u0328', 0xd4: '\u0325',
	0xd5: '\u032E', 0xd6: '\u0323', 0xd7: '\u0324', 0xd8: '\u0332', 0xd9: '\u0333',
	0xda: '\u0329', 0xdb: '\u032D', 0xde: '\uFE20', 0xdf: '\uFE21',

	0xe1: 'Æ', 0xe2: 'Đ', 0xe6: 'Ĳ', 0xe8: 'Ł', 0xe9: 'Ø', 0xea: 'Œ', 0xec: 'Þ',
	0xf1: 'æ', 0xf2: 'đ', 0xf3: 'ð', 0xf5: 'ı', 0xf6: 'ĳ', 0xf8: 'ł', 0xf9: 'ø',
	0xfa: 'œ', 0xfb: 'ß', 0xfc: 'þ',
}

var danMarc2HighReverse = func() map[rune]byte {
	rev := make(map[rune]byte, len(danMarc2High))
	for b, r := range danMarc2High {
		rev[r] = b
	}
	return rev
}()

const (
	dollarSign   = '$'
	currencySign = '¤'
	danMarc2Esc  = '@'
)
