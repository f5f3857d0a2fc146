package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	errBadPessimistic = errors.New("pessimistic operator needs a numeric version")
	errBadInterval    = errors.New("malformed version interval")

	mavenIntervalPattern = regexp.MustCompile(`[\[(][^\[\]()]*[\])]`)
)

// NewBundlerScheme understands RubyGems requirements, including `~>`.
func NewBundlerScheme(ecosystem string) *SemverScheme {
	return &SemverScheme{ecosystem: ecosystem, translate: translateRubyGems}
}

// NewPipScheme understands the PEP 440 operators used in practice.
func NewPipScheme(ecosystem string) *SemverScheme {
	return &SemverScheme{ecosystem: ecosystem, translate: translatePEP440}
}

// NewCargoScheme reads bare Cargo requirements as caret requirements.
func NewCargoScheme(ecosystem string) *SemverScheme {
	return &SemverScheme{ecosystem: ecosystem, translate: translateCargo}
}

// NewMavenScheme understands Maven interval notation.
func NewMavenScheme(ecosystem string) *SemverScheme {
	return &SemverScheme{ecosystem: ecosystem, translate: translateMavenRange}
}

func translateRubyGems(requirement string) (string, error) {
	var parts []string
	for _, piece := range strings.Split(requirement, ",") {
		piece = strings.TrimSpace(piece)
		if !strings.HasPrefix(piece, "~>") {
			parts = append(parts, piece)
			continue
		}
		translated, err := compatibleRelease(strings.TrimSpace(strings.TrimPrefix(piece, "~>")), false)
		if err != nil {
			return "", err
		}
		parts = append(parts, translated)
	}
	return strings.Join(parts, ", "), nil
}

func translateCargo(requirement string) (string, error) {
	pieces := strings.Split(requirement, ",")
	for i, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece != "" && piece[0] >= '0' && piece[0] <= '9' {
			piece = "^" + piece
		}
		pieces[i] = piece
	}
	return strings.Join(pieces, ", "), nil
}

func translatePEP440(requirement string) (string, error) {
	var parts []string
	for _, piece := range strings.Split(requirement, ",") {
		piece = strings.TrimSpace(piece)
		switch {
		case strings.HasPrefix(piece, "~="):
			translated, err := compatibleRelease(strings.TrimSpace(strings.TrimPrefix(piece, "~=")), true)
			if err != nil {
				return "", err
			}
			parts = append(parts, translated)
		case strings.HasPrefix(piece, "==="):
			parts = append(parts, "="+strings.TrimSpace(strings.TrimPrefix(piece, "===")))
		case strings.HasPrefix(piece, "=="):
			version := strings.TrimSpace(strings.TrimPrefix(piece, "=="))
			if strings.HasSuffix(version, ".*") {
				parts = append(parts, strings.TrimSuffix(version, ".*")+".x")
				continue
			}
			parts = append(parts, "="+version)
		default:
			parts = append(parts, piece)
		}
	}
	return strings.Join(parts, ", "), nil
}

// compatibleRelease expands `~> 1.2.3` / `~= 1.2.3` into a bounded range.
// RubyGems accepts a single segment (`~> 1` means `>= 1, < 2`); PEP 440 does not.
func compatibleRelease(version string, requireTwoSegments bool) (string, error) {
	segments := strings.Split(version, ".")
	if len(segments) == 1 {
		if requireTwoSegments {
			return "", fmt.Errorf("%w: %q", errBadPessimistic, version)
		}
		major, err := strconv.Atoi(segments[0])
		if err != nil {
			return "", fmt.Errorf("%w: %q", errBadPessimistic, version)
		}
		return fmt.Sprintf(">= %s, < %d", version, major+1), nil
	}

	upper := append([]string{}, segments[:len(segments)-1]...)
	last, err := strconv.Atoi(upper[len(upper)-1])
	if err != nil {
		return "", fmt.Errorf("%w: %q", errBadPessimistic, version)
	}
	upper[len(upper)-1] = strconv.Itoa(last + 1)
	if len(upper) == 1 {
		upper = append(upper, "0")
	}
	return fmt.Sprintf(">= %s, < %s", version, strings.Join(upper, ".")), nil
}

// translateMavenRange turns `[1.0,2.0)` style intervals into constraints.
// Several intervals are alternatives; a bare version is an exact match.
func translateMavenRange(requirement string) (string, error) {
	if !strings.ContainsAny(requirement, "[(") {
		return "= " + requirement, nil
	}

	intervals := mavenIntervalPattern.FindAllString(requirement, -1)
	if len(intervals) == 0 {
		return "", fmt.Errorf("%w: %q", errBadInterval, requirement)
	}

	alternatives := make([]string, 0, len(intervals))
	for _, interval := range intervals {
		translated, err := translateMavenInterval(interval)
		if err != nil {
			return "", err
		}
		alternatives = append(alternatives, translated)
	}
	return strings.Join(alternatives, " || "), nil
}

func translateMavenInterval(interval string) (string, error) {
	lowerInclusive := strings.HasPrefix(interval, "[")
	upperInclusive := strings.HasSuffix(interval, "]")
	body := interval[1 : len(interval)-1]

	bounds := strings.Split(body, ",")
	switch len(bounds) {
	case 1:
		if !lowerInclusive || !upperInclusive || strings.TrimSpace(bounds[0]) == "" {
			return "", fmt.Errorf("%w: %q", errBadInterval, interval)
		}
		return "= " + strings.TrimSpace(bounds[0]), nil
	case 2: //nolint:mnd // lower and upper bound
	default:
		return "", fmt.Errorf("%w: %q", errBadInterval, interval)
	}

	var parts []string
	if lower := strings.TrimSpace(bounds[0]); lower != "" {
		if lowerInclusive {
			parts = append(parts, ">= "+lower)
		} else {
			parts = append(parts, "> "+lower)
		}
	}
	if upper := strings.TrimSpace(bounds[1]); upper != "" {
		if upperInclusive {
			parts = append(parts, "<= "+upper)
		} else {
			parts = append(parts, "< "+upper)
		}
	}
	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, ", "), nil
}
