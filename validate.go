package authflow

import "strings"

// Field validation is pure and synchronous: no I/O, no allocation beyond the
// normalized phone string. Checks run in a fixed order and the first failure
// wins; callers that want per-field aggregation must call the predicates
// themselves.

const (
	defaultMinPasswordLength = 6
	defaultPhoneDigits       = 10
)

// ValidateAccountForm validates form with the default policy (password ≥ 6
// characters, 10-digit phone). The engine applies the configured policy via
// the same checks.
func ValidateAccountForm(form AccountForm) error {
	return validateAccountForm(form, defaultMinPasswordLength, defaultPhoneDigits)
}

func validateAccountForm(form AccountForm, minPasswordLength, phoneDigits int) error {
	if form.ChildName == "" || form.ChildAge == "" || form.ParentName == "" ||
		form.ParentPhone == "" || form.Email == "" || form.Password == "" {
		return ErrMissingFields
	}
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(form.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	if !ValidEmail(form.Email) {
		return ErrInvalidEmail
	}
	if !validPhone(form.ParentPhone, phoneDigits) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidEmail reports whether email has the shape local@domain.tld: no
// whitespace, exactly one "@" with a non-empty local part, and a "." inside
// the domain with characters on both sides.
func ValidEmail(email string) bool {
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot >= 1 && dot < len(domain)-1
}

// ValidPhone reports whether phone normalizes to exactly ten digits.
func ValidPhone(phone string) bool {
	return validPhone(phone, defaultPhoneDigits)
}

func validPhone(phone string, digits int) bool {
	return len(NormalizePhone(phone)) == digits
}

// NormalizePhone strips every non-digit character from phone.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			b.WriteByte(phone[i])
		}
	}
	return b.String()
}
