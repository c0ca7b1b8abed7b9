package webapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/constants"
)

// Check is one line of a diagnostics report.
type Check struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Report is the result of Diagnose. OverallStatus is "success" only when
// every check passed.
type Report struct {
	Checks        []Check `json:"checks"`
	OverallStatus string  `json:"overallStatus"`
}

func (r *Report) add(name string, ok bool, msg string) {
	r.Checks = append(r.Checks, Check{Name: name, Success: ok, Message: msg})
}

func (r *Report) finish() Report {
	r.OverallStatus = "success"
	for _, c := range r.Checks {
		if !c.Success {
			r.OverallStatus = "error"
			break
		}
	}
	return *r
}

// Diagnose checks the URL format, connectivity, script version and sheet
// header layout of a deployment.
func (c *Client) Diagnose(ctx context.Context, endpoint string) Report {
	var r Report
	if !strings.HasPrefix(endpoint, constants.DiagnosticsURLPrefix) {
		r.add("url", false, "Invalid URL format. Must be a https://script.google.com/... link.")
		return r.finish()
	}
	r.add("url", true, "Google Apps Script URL is valid.")

	resp, err := c.post(ctx, endpoint, map[string]string{"action": "diagnose"}, "Diagnostics failed")
	if err != nil {
		msg := Message(err)
		var se *StatusError
		if errors.As(err, &se) {
			msg = fmt.Sprintf("Connection failed: %d - %s. Please ensure the script is deployed and permissions are set to 'Anyone'.", se.Code, se.Status)
		}
		r.add("connection", false, msg)
		return r.finish()
	}
	r.add("connection", true, "Successfully connected to the script.")

	if ok, msg := checkVersion(string(resp.Version)); ok {
		r.add("version", true, msg)
	} else {
		r.add("version", false, msg)
	}

	if problems := HeaderMismatches(resp.Headers); len(problems) == 0 {
		r.add("headers", true, fmt.Sprintf("Found all %d required columns in the correct order.", len(constants.RequiredSheetHeaders)))
	} else {
		r.add("headers", false, "Your Google Sheet headers are incorrect.\n"+strings.Join(problems, "\n"))
	}
	return r.finish()
}

func checkVersion(v string) (bool, string) {
	want := strconv.FormatFloat(constants.DiagnosticsMinVersion, 'f', -1, 64)
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if v != "" && err == nil && n >= constants.DiagnosticsMinVersion {
		return true, fmt.Sprintf("Your Google Apps Script is up-to-date (v%s).", v)
	}
	if v == "" {
		v = "unknown"
	}
	return false, fmt.Sprintf("Outdated script version. Expected v%s or newer, but found v%s. Please update the script from the Setup Guide.", want, v)
}

// HeaderMismatches compares actual against the required sheet columns and
// returns one message per wrong, missing or unexpected column.
func HeaderMismatches(actual []string) []string {
	var problems []string
	for i, want := range constants.RequiredSheetHeaders {
		col := columnLetter(i)
		switch {
		case i >= len(actual):
			problems = append(problems, fmt.Sprintf("- Expected '%s' in Column %s, but found nothing.", want, col))
		case actual[i] != want:
			problems = append(problems, fmt.Sprintf("- Expected '%s' in Column %s, but found '%s'.", want, col, actual[i]))
		}
	}
	for i := len(constants.RequiredSheetHeaders); i < len(actual); i++ {
		problems = append(problems, fmt.Sprintf("- Unexpected column '%s' in Column %s.", actual[i], columnLetter(i)))
	}
	return problems
}

// columnLetter returns the spreadsheet column name for a zero-based index.
func columnLetter(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
