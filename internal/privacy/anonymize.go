// Package privacy holds the pure rules used to anonymize personal data when an
// account is closed: value masking for retained history, replacement sets for
// live rows, anonymous identifiers and statutory retention periods.
package privacy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaskedPhonePlaceholder is returned for phone numbers that cannot be parsed.
const MaskedPhonePlaceholder = "****-****-****"

const maskedAccountTail = "******"

const phoneSeparators = "-. "

// Account-like runs shorter than this are left alone so dates survive.
const minAccountDigits = 10

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\b0\d{1,2}[ .-]?\d{3,4}[ .-]?\d{4}\b`)
	accountPattern = regexp.MustCompile(`\b\d{2,6}-\d{2,6}-\d{2,8}\b|\b\d{10,16}\b`)
)

// AnonymizeName keeps the first and last character of a name and stars the rest.
func AnonymizeName(name string) string {
	runes := []rune(name)
	switch len(runes) {
	case 0, 1:
		return name
	case 2:
		return string(runes[0]) + "*"
	default:
		return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
	}
}

// AnonymizePhoneNumber keeps the carrier prefix and the last four digits of a
// 10 or 11 digit national number. Separated input keeps its separator, so
// hyphenated input yields hyphenated output.
func AnonymizePhoneNumber(phone string) string {
	trimmed := strings.TrimSpace(phone)
	separator := ""
	if i := strings.IndexAny(trimmed, phoneSeparators); i >= 0 {
		separator = trimmed[i : i+1]
	}
	digits := strings.Map(func(r rune) rune {
		if strings.ContainsRune(phoneSeparators, r) {
			return -1
		}
		return r
	}, trimmed)
	if (len(digits) != 10 && len(digits) != 11) || !isDigits(digits) {
		return MaskedPhonePlaceholder
	}

	head := digits[:3]
	tail := digits[len(digits)-4:]
	return head + separator + "****" + separator + tail
}

// AnonymizeAccountNumber hides everything but the bank prefix of an account number.
func AnonymizeAccountNumber(account string) string {
	trimmed := strings.TrimSpace(account)
	if trimmed == "" {
		return ""
	}

	if parts := strings.Split(trimmed, "-"); len(parts) == 3 {
		return parts[0] + "-***-" + maskedAccountTail
	}

	digits := strings.ReplaceAll(trimmed, "-", "")
	if !isDigits(digits) || len(digits) < 6 {
		return maskedAccountTail
	}
	return digits[:len(digits)-6] + maskedAccountTail
}

// AnonymizeEmail keeps the first character of the local part and the domain.
func AnonymizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	local, domain := email[:at], email[at:]
	if local == "" {
		return "***" + domain
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***" + domain
}

// AnonymizeText masks emails, phone numbers and account-like digit runs found
// inside free text. Everything else is left untouched.
func AnonymizeText(text string) string {
	if text == "" {
		return text
	}

	out := emailPattern.ReplaceAllStringFunc(text, AnonymizeEmail)
	out = replaceStandalone(out, phonePattern, AnonymizePhoneNumber)
	out = accountPattern.ReplaceAllStringFunc(out, maskAccountRun)
	return out
}

// AnonymizeTextPtr applies AnonymizeText to an optional field.
func AnonymizeTextPtr(text *string) *string {
	if text == nil {
		return nil
	}
	masked := AnonymizeText(*text)
	return &masked
}

// replaceStandalone rewrites matches that do not continue a longer digit run,
// such as the tail of a hyphenated account number.
func replaceStandalone(text string, pattern *regexp.Regexp, fn func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		if start := loc[0]; start > 0 && strings.ContainsRune("-0123456789", rune(text[start-1])) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(fn(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func maskAccountRun(run string) string {
	if len(strings.ReplaceAll(run, "-", "")) < minAccountDigits {
		return run
	}
	return AnonymizeAccountNumber(run)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
