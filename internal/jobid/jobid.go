// Package jobid issues and validates trainyard job identifiers.
//
// An identifier is 15 characters: 13 random digits and 2 random lowercase
// letters, shuffled together. Generation avoids ids already in use, but the
// store's unique constraint is the real guarantee against races.
package jobid

import (
	"math/rand/v2"
	"strings"
)

const (
	// Length is the exact size of a job identifier.
	Length = 15

	digitCount  = 13
	letterCount = 2

	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyz"
)

// Generate returns a fresh identifier not present in taken.
func Generate(taken map[string]struct{}) string {
	for {
		id := random()
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func random() string {
	chars := make([]byte, 0, Length)
	for range digitCount {
		chars = append(chars, digits[rand.IntN(len(digits))])
	}
	for range letterCount {
		chars = append(chars, letters[rand.IntN(len(letters))])
	}
	rand.Shuffle(len(chars), func(i, j int) {
		chars[i], chars[j] = chars[j], chars[i]
	})
	return string(chars)
}

// Valid reports whether id has an acceptable shape: exactly Length
// characters, each a digit or lowercase letter. It deliberately does not
// enforce the generator's 13/2 digit-letter split; externally supplied ids
// only need to be well formed.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !strings.ContainsRune(digits, rune(c)) && !strings.ContainsRune(letters, rune(c)) {
			return false
		}
	}
	return true
}
