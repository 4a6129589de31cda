package localgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// taiwanLetterCodes maps the leading letter of a Taiwan ID to its two-digit code
var taiwanLetterCodes = map[byte]int{
	'A': 10, 'B': 11, 'C': 12, 'D': 13, 'E': 14, 'F': 15, 'G': 16, 'H': 17,
	'I': 34, 'J': 18, 'K': 19, 'L': 20, 'M': 21, 'N': 22, 'O': 35, 'P': 23,
	'Q': 24, 'R': 25, 'S': 26, 'T': 27, 'U': 28, 'V': 29, 'W': 32, 'X': 30,
	'Y': 31, 'Z': 33,
}

const taiwanLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var taiwanWeights = [10]int{1, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// TaiwanIDCard emits national ID numbers with a valid check digit
type TaiwanIDCard struct{}

func (TaiwanIDCard) Validate(opts Options) error {
	switch opts.str("gender", "random") {
	case "male", "female", "random", "":
		return nil
	default:
		return &OptionError{Generator: TypeTaiwanIDCard, Message: `gender must be "male", "female" or "random"`}
	}
}

func (g TaiwanIDCard) Generate(_ context.Context, rows int, opts Options) ([]any, error) {
	if err := g.Validate(opts); err != nil {
		return nil, err
	}
	gender := opts.str("gender", "random")

	out := make([]any, rows)
	for i := range out {
		out[i] = taiwanID(gender)
	}
	return out, nil
}

func taiwanID(gender string) string {
	letter := taiwanLetters[rand.IntN(len(taiwanLetters))]

	var digits [8]int
	switch gender {
	case "male":
		digits[0] = 1
	case "female":
		digits[0] = 2
	default:
		digits[0] = 1 + rand.IntN(2)
	}
	for i := 1; i < len(digits); i++ {
		digits[i] = rand.IntN(10)
	}

	var b strings.Builder
	b.WriteByte(letter)
	for _, d := range digits {
		b.WriteByte(byte('0' + d))
	}
	b.WriteByte(byte('0' + taiwanCheckDigit(letter, digits)))
	return b.String()
}

func taiwanCheckDigit(letter byte, digits [8]int) int {
	code := taiwanLetterCodes[letter]
	sum := (code/10)*taiwanWeights[0] + (code%10)*taiwanWeights[1]
	for i, d := range digits {
		sum += d * taiwanWeights[i+2]
	}
	return (10 - sum%10) % 10
}

// ValidTaiwanID reports whether id has a correct letter code and check digit
func ValidTaiwanID(id string) bool {
	if len(id) != 10 {
		return false
	}
	if _, ok := taiwanLetterCodes[id[0]]; !ok {
		return false
	}
	var digits [8]int
	for i := 0; i < 8; i++ {
		c := id[i+1]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
	}
	last := id[9]
	if last < '0' || last > '9' {
		return false
	}
	return taiwanCheckDigit(id[0], digits) == int(last-'0')
}

// chinaRegionPrefixes are administrative division codes for a few large cities
var chinaRegionPrefixes = []string{
	"110101", "110102", "110105", "110108", // Beijing
	"310101", "310104", "310106", "310115", // Shanghai
	"440103", "440104", "440106", "440111", // Guangzhou
	"440301", "440303", "440304", "440306", // Shenzhen
	"510104", "510105", "510107", "510112", // Chengdu
	"330102", "330103", "330106", "330108", // Hangzhou
}

var chinaWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}

const chinaCheckChars = "10X98765432"

// ChinaIDCard emits 18-character resident ID numbers for adults aged 18 to 60
type ChinaIDCard struct {
	now func() time.Time
}

func (g ChinaIDCard) Generate(_ context.Context, rows int, _ Options) ([]any, error) {
	now := time.Now()
	if g.now != nil {
		now = g.now()
	}
	oldest := now.AddDate(-60, 0, 0)
	youngest := now.AddDate(-18, 0, 0)
	span := youngest.Sub(oldest)

	out := make([]any, rows)
	for i := range out {
		region := chinaRegionPrefixes[rand.IntN(len(chinaRegionPrefixes))]
		birth := oldest.Add(time.Duration(rand.Int64N(int64(span))))
		seq := 100 + rand.IntN(900)

		body := region + birth.Format("20060102") + strconv.Itoa(seq)
		out[i] = body + string(chinaCheckChar(body))
	}
	return out, nil
}

func chinaCheckChar(body string) byte {
	sum := 0
	for i := 0; i < len(chinaWeights) && i < len(body); i++ {
		sum += int(body[i]-'0') * chinaWeights[i]
	}
	return chinaCheckChars[sum%11]
}

// ValidChinaID reports whether id has 17 digits and a correct ISO 7064 check character
func ValidChinaID(id string) bool {
	if len(id) != 18 {
		return false
	}
	for i := 0; i < 17; i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return chinaCheckChar(id[:17]) == id[17]
}

var taiwanMobilePrefixes = []string{
	"0910", "0911", "0912", "0918", "0919", "0921", "0928", "0932", "0933",
	"0934", "0935", "0937", "0939", "0952", "0953", "0955", "0958", "0963",
	"0965", "0966", "0972", "0975", "0978", "0988", "0905", "0909", "0968",
}

// chinaMobilePrefixes covers the three major carriers
var chinaMobilePrefixes = []string{
	"134", "135", "136", "137", "138", "139", "150", "151", "152", "157", "158", "159",
	"182", "183", "184", "187", "188", "198",
	"130", "131", "132", "155", "156", "185", "186", "166", "176",
	"133", "153", "180", "181", "189", "199", "177",
}

// TaiwanMobilePhone emits 10-digit numbers from a carrier prefix table
type TaiwanMobilePhone struct{}

func (TaiwanMobilePhone) Generate(_ context.Context, rows int, _ Options) ([]any, error) {
	return phoneNumbers(rows, taiwanMobilePrefixes, 6), nil
}

// ChinaMobilePhone emits 11-digit numbers from a carrier prefix table
type ChinaMobilePhone struct{}

func (ChinaMobilePhone) Generate(_ context.Context, rows int, _ Options) ([]any, error) {
	return phoneNumbers(rows, chinaMobilePrefixes, 8), nil
}

func phoneNumbers(rows int, prefixes []string, suffixDigits int) []any {
	lo := 1
	for i := 1; i < suffixDigits; i++ {
		lo *= 10
	}
	out := make([]any, rows)
	for i := range out {
		prefix := prefixes[rand.IntN(len(prefixes))]
		out[i] = fmt.Sprintf("%s%d", prefix, lo+rand.IntN(9*lo))
	}
	return out
}
