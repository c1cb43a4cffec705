package validate

import (
	"strings"
	"unicode"
)

// Russian number words up to one hundred, enough for page counts and small
// weights spelled out in chat.
var numberWords = map[string]int{
	"ноль":   0,
	"один":   1,
	"одна":   1,
	"два":    2,
	"две":    2,
	"три":    3,
	"четыре": 4,
	"пять":   5,
	"шесть":  6,
	"семь":   7,
	"восемь": 8,
	"девять": 9,

	"десять":       10,
	"одиннадцать":  11,
	"двенадцать":   12,
	"тринадцать":   13,
	"четырнадцать": 14,
	"пятнадцать":   15,
	"шестнадцать":  16,
	"семнадцать":   17,
	"восемнадцать": 18,
	"девятнадцать": 19,

	"двадцать":    20,
	"тридцать":    30,
	"сорок":       40,
	"пятьдесят":   50,
	"шестьдесят":  60,
	"семьдесят":   70,
	"восемьдесят": 80,
	"девяносто":   90,

	"сто": 100,
}

// ParseNumber extracts an integer from free text. It prefers the first digit
// run; failing that it falls back to spelled-out Russian number words with
// simple additive composition ("двадцать пять" → 25). The second return is
// false when no number could be found.
func ParseNumber(raw string) (int, bool) {
	if m := digitRunRE.FindString(raw); m != "" {
		n := 0
		for _, r := range m {
			n = n*10 + int(r-'0')
			if n > 1_000_000 {
				return 0, false
			}
		}
		return n, true
	}
	return parseNumberWords(raw)
}

// parseNumberWords sums the longest consecutive run of recognized number
// words, so surrounding words ("двадцать пять листов") do not break parsing.
func parseNumberWords(raw string) (int, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	best, bestLen := 0, 0
	cur, curLen := 0, 0
	for _, tok := range tokens {
		if n, ok := numberWords[tok]; ok {
			cur += n
			curLen++
			if curLen > bestLen {
				best, bestLen = cur, curLen
			}
			continue
		}
		cur, curLen = 0, 0
	}
	if bestLen == 0 {
		return 0, false
	}
	return best, true
}
