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

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

func isMark(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Me)
}

// combiner collects decoded characters. Marks are held back until the letter they precede in the
// byte stream has been written, then appended after it.
type combiner struct {
	sb    strings.Builder
	marks []rune
}

func (c *combiner) emit(r rune) {
	if isMark(r) {
		c.marks = append(c.marks, r)
		return
	}
	c.sb.WriteRune(r)
	c.flush()
}

// control writes r without letting pending marks attach to it.
func (c *combiner) control(r rune) {
	c.flush()
	c.sb.WriteRune(r)
}

func (c *combiner) flush() {
	for _, m := range c.marks {
		c.sb.WriteRune(m)
	}
	c.marks = c.marks[:0]
}

func (c *combiner) String() string {
	c.flush()
	return norm.NFC.String(c.sb.String())
}

// cluster is a base character with the marks following it in Unicode order.
// A cluster without base (base < 0) holds marks found at the start of the text.
type cluster struct {
	base   rune
	marks  []rune
	offset int
}

func splitClusters(s string) []cluster {
	var result []cluster
	for i, r := range s {
		if isMark(r) {
			if len(result) == 0 {
				result = append(result, cluster{base: -1, offset: i})
			}
			last := &result[len(result)-1]
			last.marks = append(last.marks, r)
			continue
		}
		result = append(result, cluster{base: r, offset: i})
	}
	return result
}

// decompose splits a precomposed base the character set cannot represent into a base and marks.
func (c cluster) decompose(mappable func(rune) bool) cluster {
	if c.base < 0 || mappable(c.base) {
		return c
	}
	d := []rune(norm.NFD.String(string(c.base)))
	if len(d) < 2 || !mappable(d[0]) {
		return c
	}
	marks := make([]rune, 0, len(d)-1+len(c.marks))
	marks = append(marks, d[1:]...)
	marks = append(marks, c.marks...)
	return cluster{base: d[0], marks: marks, offset: c.offset}
}
