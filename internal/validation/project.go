package validation

import (
	"fmt"
	"math/big"
	"strings"

	"donation-widget/internal/models"
)

// IssueCode classifies a reason a project is not publishable
type IssueCode string

const (
	IssueEmptyName        IssueCode = "empty_name"
	IssueRecipientCount   IssueCode = "recipient_count"
	IssueAddressFormat    IssueCode = "address_format"
	IssueNegativeShare    IssueCode = "negative_share"
	IssueShareTooLarge    IssueCode = "share_too_large"
	IssueUnsupportedChain IssueCode = "unsupported_chain"
	IssueShareSumMismatch IssueCode = "share_sum_mismatch"
)

// Issue is one failed check. Index is the recipient position, -1 for
// project-level issues.
type Issue struct {
	Code    IssueCode `json:"code"`
	Index   int       `json:"index"`
	Message string    `json:"message"`
}

// Verdict is the outcome of Validate
type Verdict struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Has reports whether the verdict carries an issue with code
func (v Verdict) Has(code IssueCode) bool {
	for _, issue := range v.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Err returns nil for a valid verdict, otherwise an error wrapping
// models.ErrInvalidProject and, where it applies, the matching sentinel.
func (v Verdict) Err() error {
	if v.Valid {
		return nil
	}
	messages := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		messages = append(messages, issue.Message)
	}
	detail := strings.Join(messages, "; ")
	switch {
	case v.Has(IssueAddressFormat):
		return fmt.Errorf("%w: %w: %s", models.ErrInvalidProject, models.ErrAddressFormat, detail)
	case v.Has(IssueShareSumMismatch):
		return fmt.Errorf("%w: %w: %s", models.ErrInvalidProject, models.ErrShareSumMismatch, detail)
	}
	return fmt.Errorf("%w: %s", models.ErrInvalidProject, detail)
}

// Validate checks a project snapshot for publishability. It is a pure
// function; every failed check is reported, nothing is returned as an error.
//
// The share total is taken across the whole recipient list regardless of
// chain, even though splitting only ever looks at one chain's subset.
func Validate(project models.Project) Verdict {
	var issues []Issue
	add := func(code IssueCode, index int, format string, args ...interface{}) {
		issues = append(issues, Issue{Code: code, Index: index, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(project.Name) == "" {
		add(IssueEmptyName, -1, "project name is required")
	}

	n := len(project.Recipients)
	if n < models.MinRecipients || n > models.MaxRecipients {
		add(IssueRecipientCount, -1, "project needs %d to %d recipients, has %d",
			models.MinRecipients, models.MaxRecipients, n)
	}

	total := new(big.Int)
	for i, r := range project.Recipients {
		if !IsAddress(r.Address) {
			add(IssueAddressFormat, i, "recipient %d: address %q is not 0x followed by 40 hex digits", i+1, r.Address)
		}
		if r.Share < 0 {
			add(IssueNegativeShare, i, "recipient %d: share %d is negative", i+1, r.Share)
		}
		if r.Share > models.TotalShares {
			add(IssueShareTooLarge, i, "recipient %d: share %d exceeds %d", i+1, r.Share, models.TotalShares)
		}
		if !models.IsSupportedChain(r.ChainID) {
			add(IssueUnsupportedChain, i, "recipient %d: chain %d is not supported", i+1, int64(r.ChainID))
		}
		total.Add(total, big.NewInt(int64(r.Share)))
	}

	if total.Cmp(big.NewInt(models.TotalShares)) != 0 {
		add(IssueShareSumMismatch, -1, "shares total %s, must equal %d", total, models.TotalShares)
	}

	return Verdict{Valid: len(issues) == 0, Issues: issues}
}
