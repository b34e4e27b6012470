package ledger

import (
	"strings"
	"unicode"
)

var smallNumbers = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleNumbers = map[string]int64{
	"thousand": 1_000,
	"lakh":     100_000,
	"lakhs":    100_000,
	"million":  1_000_000,
	"crore":    10_000_000,
	"crores":   10_000_000,
	"billion":  1_000_000_000,
}

// maxWordAmount is the largest whole amount a decimal(15,2) column holds.
const maxWordAmount int64 = 9_999_999_999_999

// firstNumberWords reads the first run of English cardinal words in text,
// e.g. "two hundred and fifty" or "twenty-five thousand". Runs whose value
// would exceed maxWordAmount are rejected.
func firstNumberWords(text string) (int64, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var total, current int64
	inRun := false

	for _, word := range words {
		if v, ok := smallNumbers[word]; ok {
			if current > maxWordAmount-v {
				return 0, false
			}
			current += v
			inRun = true
			continue
		}

		if word == "hundred" {
			if current == 0 {
				current = 1
			}
			if current > maxWordAmount/100 {
				return 0, false
			}
			current *= 100
			inRun = true
			continue
		}

		if scale, ok := scaleNumbers[word]; ok {
			if current == 0 {
				current = 1
			}
			if current > maxWordAmount/scale || total > maxWordAmount-current*scale {
				return 0, false
			}
			total += current * scale
			current = 0
			inRun = true
			continue
		}

		if inRun && word == "and" {
			continue
		}

		if inRun {
			break
		}
	}

	if !inRun {
		return 0, false
	}
	if total > maxWordAmount-current {
		return 0, false
	}
	return total + current, true
}
