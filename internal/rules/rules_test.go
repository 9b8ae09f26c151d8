package rules

import (
	"testing"

	"github.com/yungbote/obligo-backend/internal/types"
)

func TestSchoolContext(t *testing.T) {
	cases := []struct {
		name      string
		sourceRef string
		want      string
	}{
		{name: "plain_school_ref", sourceRef: "school:stanford", want: "stanford"},
		{name: "school_ref_with_suffix", sourceRef: "school:umich:housing-portal", want: "umich"},
		{name: "empty_school_id", sourceRef: "school:", want: ""},
		{name: "no_prefix", sourceRef: "email:msg-123", want: ""},
		{name: "empty_ref", sourceRef: "", want: ""},
		{name: "prefix_must_match_exactly", sourceRef: "schools:xyz", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SchoolContext(tc.sourceRef); got != tc.want {
				t.Fatalf("SchoolContext(%q)=%q, want %q", tc.sourceRef, got, tc.want)
			}
		})
	}
}

func TestSchoolKey(t *testing.T) {
	if got := SchoolKey("school:osu:fees"); got != "osu" {
		t.Fatalf("SchoolKey=%q, want osu", got)
	}
	if got := SchoolKey("manual-entry"); got != NoSchoolKey {
		t.Fatalf("SchoolKey=%q, want sentinel %q", got, NoSchoolKey)
	}
}

func TestRequiredTypes(t *testing.T) {
	// Static map entries pass through untouched.
	got := RequiredTypes(types.TypeEnrollment, false)
	if len(got) != 1 || got[0] != types.TypeFAFSA {
		t.Fatalf("RequiredTypes(ENROLLMENT)=%v, want [FAFSA]", got)
	}

	// HOUSING_DEPOSIT is the one conditional rule.
	got = RequiredTypes(types.TypeHousingDeposit, false)
	if len(got) != 1 || got[0] != types.TypeAcceptance {
		t.Fatalf("RequiredTypes(HOUSING_DEPOSIT, no enrollment deposit)=%v, want [ACCEPTANCE]", got)
	}
	got = RequiredTypes(types.TypeHousingDeposit, true)
	if len(got) != 1 || got[0] != types.TypeEnrollmentDeposit {
		t.Fatalf("RequiredTypes(HOUSING_DEPOSIT, enrollment deposit present)=%v, want [ENROLLMENT_DEPOSIT]", got)
	}

	// Types with no prerequisites get nothing.
	if got := RequiredTypes(types.TypeAcceptance, false); len(got) != 0 {
		t.Fatalf("RequiredTypes(ACCEPTANCE)=%v, want empty", got)
	}
}

func TestStepsGated(t *testing.T) {
	if !StepsGated(types.TypeFAFSA) {
		t.Fatal("FAFSA should be step-gated")
	}
	if !StepsGated(types.TypeScholarship) {
		t.Fatal("SCHOLARSHIP should be step-gated")
	}
	if StepsGated(types.TypeHousingDeposit) {
		t.Fatal("HOUSING_DEPOSIT should not be step-gated")
	}
}

func TestLooksLikeConfirmation(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		snippet string
		summary string
		want    bool
	}{
		{
			name:    "receipt_in_subject",
			subject: "Your payment receipt from Stanford",
			want:    true,
		},
		{
			name:    "confirmation_in_snippet",
			snippet: "This is a confirmation of your housing deposit.",
			want:    true,
		},
		{
			name:    "we_received_in_summary",
			summary: "We received your enrollment deposit on March 3.",
			want:    true,
		},
		{
			name:    "case_insensitive",
			subject: "APPLICATION RECEIVED",
			want:    true,
		},
		{
			name:    "reminder_is_not_confirmation",
			subject: "Reminder: your FAFSA is due soon",
			snippet: "Don't forget to submit before the deadline.",
			want:    false,
		},
		{
			name:    "promotional_mail_refused",
			subject: "Scholarship opportunities for you",
			want:    false,
		},
		{
			name: "empty_refused",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LooksLikeConfirmation(tc.subject, tc.snippet, tc.summary)
			if got != tc.want {
				t.Fatalf("LooksLikeConfirmation(%q, %q, %q)=%v, want %v",
					tc.subject, tc.snippet, tc.summary, got, tc.want)
			}
		})
	}
}
