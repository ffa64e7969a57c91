package domain

import "regexp"

// Input bounds for campaign creation.
const (
	TitleMinLen        = 4
	TitleMaxLen        = 50
	DescriptionMaxLen  = 1000
	LocationMaxLen     = 100
	DurationMinDays    = 1
	DurationMaxDays    = 30
	DefaultTargetLimit int64 = 1_000_000
)

// locationPattern matches a "lat,lon" pair, e.g. "-6.2,106.8". The whole
// string must be the pair; latitude is capped at 90 and longitude at 180.
var locationPattern = regexp.MustCompile(`^[-+]?([1-8]?\d(\.\d+)?|90(\.0+)?),\s*[-+]?(180(\.0+)?|((1[0-7]\d)|([1-9]?\d))(\.\d+)?)$`)

// CheckTitle validates the campaign title length.
func CheckTitle(title string) *FieldError {
	if n := len(title); n < TitleMinLen || n > TitleMaxLen {
		return &FieldError{Field: "title", Code: CodeTitleInvalidLength, Min: TitleMinLen, Max: TitleMaxLen}
	}
	return nil
}

// CheckDescription validates the campaign description length.
func CheckDescription(description string) *FieldError {
	if len(description) > DescriptionMaxLen {
		return &FieldError{Field: "description", Code: CodeDescriptionTooLong, Max: DescriptionMaxLen}
	}
	return nil
}

// CheckLocation validates that location is a well-formed lat,lon pair.
func CheckLocation(location string) *FieldError {
	if len(location) > LocationMaxLen {
		return &FieldError{Field: "location", Code: CodeLocationTooLong, Max: LocationMaxLen}
	}
	if !locationPattern.MatchString(location) {
		return &FieldError{Field: "location", Code: CodeLocationInvalidFormat}
	}
	return nil
}

// CheckTargetAmount validates the funding target against the configured cap.
func CheckTargetAmount(amount, limit int64) *FieldError {
	if limit <= 0 {
		limit = DefaultTargetLimit
	}
	if amount <= 0 || amount > limit {
		return &FieldError{Field: "target_amount", Code: CodeTargetInvalidValue, Min: 1, Max: limit}
	}
	return nil
}

// CheckDuration validates the campaign lifetime in days.
func CheckDuration(days int) *FieldError {
	if days < DurationMinDays || days > DurationMaxDays {
		return &FieldError{Field: "duration_days", Code: CodeDurationInvalid, Min: DurationMinDays, Max: DurationMaxDays}
	}
	return nil
}
