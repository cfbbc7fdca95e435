package voucherpdf

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	wordOnes = [...]string{
		"", "واحد", "اثنان", "ثلاثة", "أربعة", "خمسة",
		"ستة", "سبعة", "ثمانية", "تسعة",
	}
	wordTens = [...]string{
		"", "", "عشرون", "ثلاثون", "أربعون", "خمسون",
		"ستون", "سبعون", "ثمانون", "تسعون",
	}
	wordTeens = [...]string{
		"عشرة", "أحد عشر", "اثنا عشر", "ثلاثة عشر", "أربعة عشر",
		"خمسة عشر", "ستة عشر", "سبعة عشر", "ثمانية عشر", "تسعة عشر",
	}
	wordHundreds = [...]string{
		"", "مائة", "مائتان", "ثلاثمائة", "أربعمائة", "خمسمائة",
		"ستمائة", "سبعمائة", "ثمانمائة", "تسعمائة",
	}
	wordScales = [...]string{"", "ألف", "مليون", "مليار", "تريليون"}
)

const wordJoiner = " و "

// AmountInWords spells a riyal amount in Arabic, halalas included.
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	if amount.IsZero() {
		return "صفر ريال"
	}

	whole := amount.Truncate(0)
	fraction := amount.Sub(whole).Shift(2).IntPart()

	result := wholeInWords(whole.IntPart()) + " ريال"
	if fraction > 0 {
		result += wordJoiner + wholeInWords(fraction) + " هللة"
	}
	return result + " فقط لا غير"
}

func wholeInWords(n int64) string {
	if n == 0 {
		return "صفر"
	}

	var parts []string
	for scale := 0; n > 0 && scale < len(wordScales); scale++ {
		chunk := int(n % 1000)
		n /= 1000
		if chunk == 0 {
			continue
		}

		words := hundredsInWords(chunk)
		switch {
		case scale == 0:
		case scale == 1 && chunk == 1:
			words = "ألف"
		case scale == 1 && chunk == 2:
			words = "ألفان"
		case scale == 1 && chunk <= 10:
			words += " آلاف"
		default:
			words += " " + wordScales[scale]
		}
		parts = append([]string{words}, parts...)
	}
	return strings.Join(parts, wordJoiner)
}

func hundredsInWords(n int) string {
	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, wordHundreds[h])
	}

	rem := n % 100
	if rem >= 10 && rem <= 19 {
		parts = append(parts, wordTeens[rem-10])
	} else {
		if t := rem / 10; t > 0 {
			parts = append(parts, wordTens[t])
		}
		if o := rem % 10; o > 0 {
			parts = append(parts, wordOnes[o])
		}
	}
	return strings.Join(parts, wordJoiner)
}
