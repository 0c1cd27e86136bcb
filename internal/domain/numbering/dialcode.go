package numbering

import "strings"

// DialCodeSplit is the result of resolving a digit string's dial code.
type DialCodeSplit struct {
	DialCode       string
	NationalNumber string
}

// twoDigitDialCodes is the set of legitimate 2-digit E.164 dial codes. It is
// the ITU table minus every code that is actually the prefix of a 3-digit
// code (e.g. "21x" is always 3-digit, so "21" is absent). This is
// configuration data: swapping in a fuller ITU table does not change the
// resolution algorithm.
var twoDigitDialCodes = map[string]bool{
	"20": true, "27": true,
	"30": true, "31": true, "32": true, "33": true, "34": true,
	"36": true, "39": true,
	"40": true, "41": true, "43": true, "44": true, "45": true,
	"46": true, "47": true, "48": true, "49": true,
	"51": true, "52": true, "53": true, "54": true, "55": true,
	"56": true, "57": true, "58": true,
	"60": true, "61": true, "62": true, "63": true, "64": true,
	"65": true, "66": true,
	"81": true, "82": true, "84": true, "86": true,
	"90": true, "91": true, "92": true, "93": true, "94": true,
	"95": true, "98": true,
}

// ResolveDialCode splits a digits-only string into dial code and national
// number. E.164 dial codes are 1, 2, or 3 digits with no self-delimiting
// marker, so the test order matters:
//
//  1. "1" with at least 11 total digits is NANP; 1-digit resolution wins
//     because "1" is reserved exclusively for NANP.
//  2. A known 2-digit code on a string of at least 10 digits wins next.
//  3. Otherwise the first three digits are taken as the dial code.
//
// Strings under 10 digits fail resolution: no supported plan produces a
// valid E.164 number that short.
func ResolveDialCode(digitsOnly string) (DialCodeSplit, bool) {
	if len(digitsOnly) < 10 {
		return DialCodeSplit{}, false
	}
	if strings.HasPrefix(digitsOnly, "1") && len(digitsOnly) >= 11 {
		return DialCodeSplit{DialCode: "1", NationalNumber: digitsOnly[1:]}, true
	}
	if twoDigitDialCodes[digitsOnly[:2]] {
		return DialCodeSplit{DialCode: digitsOnly[:2], NationalNumber: digitsOnly[2:]}, true
	}
	return DialCodeSplit{DialCode: digitsOnly[:3], NationalNumber: digitsOnly[3:]}, true
}
