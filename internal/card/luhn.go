package card

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when a card number is empty or contains anything
// other than ASCII digits.
var ErrMalformed = errors.New("malformed card number")

// Valid reports whether number passes the mod-10 checksum.
func Valid(number string) (bool, error) {
	if err := checkDigits(number); err != nil {
		return false, err
	}

	sum := 0
	for i := 0; i < len(number); i++ {
		digit := int(number[len(number)-1-i] - '0')
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}

	return sum%10 == 0, nil
}

func checkDigits(number string) error {
	if number == "" {
		return fmt.Errorf("%w: empty", ErrMalformed)
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return fmt.Errorf("%w: non-digit %q at position %d", ErrMalformed, number[i], i)
		}
	}
	return nil
}

// Mask keeps the first six and last four digits, enough to correlate a log
// line with a BIN lookup without exposing the full number.
func Mask(number string) string {
	if len(number) <= 10 {
		return "******"
	}
	masked := []byte(number)
	for i := 6; i < len(masked)-4; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
