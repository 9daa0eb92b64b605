package intel

import (
	"reflect"
	"testing"
)

func TestExtract_UPIIDs(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("known handle", func(t *testing.T) {
		set := e.Extract("send the money to support123@paytm right away")
		want := []string{"support123@paytm"}
		if !reflect.DeepEqual(set.UPIIDs, want) {
			t.Errorf("UPIIDs = %v, want %v", set.UPIIDs, want)
		}
	})

	t.Run("case insensitive handle", func(t *testing.T) {
		set := e.Extract("pay to Refunds@PhonePe now")
		if len(set.UPIIDs) != 1 || set.UPIIDs[0] != "Refunds@PhonePe" {
			t.Errorf("UPIIDs = %v, want [Refunds@PhonePe]", set.UPIIDs)
		}
	})

	t.Run("broad fallback when no known handle", func(t *testing.T) {
		set := e.Extract("contact me at agent@example.com for details")
		if len(set.UPIIDs) != 1 || set.UPIIDs[0] != "agent@example.com" {
			t.Errorf("UPIIDs = %v, want [agent@example.com]", set.UPIIDs)
		}
	})

	t.Run("broad fallback capped", func(t *testing.T) {
		set := e.Extract("a@x.com b@x.com c@x.com d@x.com e@x.com f@x.com g@x.com")
		if len(set.UPIIDs) != maxBroadUPIMatches {
			t.Errorf("len(UPIIDs) = %d, want %d", len(set.UPIIDs), maxBroadUPIMatches)
		}
	})

	t.Run("known handle suppresses broad matches", func(t *testing.T) {
		set := e.Extract("pay scam@ybl or email other@example.com")
		want := []string{"scam@ybl"}
		if !reflect.DeepEqual(set.UPIIDs, want) {
			t.Errorf("UPIIDs = %v, want %v", set.UPIIDs, want)
		}
	})
}

func TestExtract_BankAccounts(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"spaced groups normalized", "transfer to 1234 5678 9012 today", []string{"123456789012"}},
		{"dashed groups normalized", "account 1234-5678-9012", []string{"123456789012"}},
		{"plain digits", "use 123456789012", []string{"123456789012"}},
		{"phone-length digits ignored", "call 9876543210", []string{}},
		{"duplicates collapsed", "1234 5678 9012 and again 123456789012", []string{"123456789012"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := e.Extract(tt.text)
			if !reflect.DeepEqual(set.BankAccounts, tt.want) {
				t.Errorf("BankAccounts = %v, want %v", set.BankAccounts, tt.want)
			}
		})
	}
}

func TestExtract_PhoneNumbers(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare mobile", "call me at 9876543210", "9876543210"},
		{"with country code", "reach +919876543210 now", "+919876543210"},
		{"with leading zero", "dial 09876543210", "09876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := e.Extract(tt.text)
			if len(set.PhoneNumbers) != 1 || set.PhoneNumbers[0] != tt.want {
				t.Errorf("PhoneNumbers = %v, want [%s]", set.PhoneNumbers, tt.want)
			}
		})
	}

	t.Run("phone-shaped token not swallowed by account extraction", func(t *testing.T) {
		set := e.Extract("my number is 9876543210")
		if len(set.PhoneNumbers) == 0 {
			t.Error("phone number should be extracted")
		}
		if len(set.BankAccounts) != 0 {
			t.Errorf("BankAccounts = %v, want none for a 10-digit phone", set.BankAccounts)
		}
	})
}

func TestExtract_PhishingLinks(t *testing.T) {
	e := NewExtractor(nil)

	t.Run("scheme URLs", func(t *testing.T) {
		set := e.Extract("click https://secure-bank.example/verify?id=1 now")
		if len(set.PhishingLinks) != 1 || set.PhishingLinks[0] != "https://secure-bank.example/verify?id=1" {
			t.Errorf("PhishingLinks = %v", set.PhishingLinks)
		}
	})

	t.Run("schemeless shortener", func(t *testing.T) {
		set := e.Extract("open bit.ly/win-prize to claim")
		if len(set.PhishingLinks) != 1 || set.PhishingLinks[0] != "bit.ly/win-prize" {
			t.Errorf("PhishingLinks = %v", set.PhishingLinks)
		}
	})
}

func TestExtract_SuspiciousKeywords(t *testing.T) {
	t.Run("case insensitive match keeps canonical form", func(t *testing.T) {
		e := NewExtractor(nil)
		set := e.Extract("URGENT!! Please VERIFY your OTP")
		want := []string{"urgent", "verify", "OTP"}
		if !reflect.DeepEqual(set.SuspiciousKeywords, want) {
			t.Errorf("SuspiciousKeywords = %v, want %v", set.SuspiciousKeywords, want)
		}
	})

	t.Run("extra keywords from external list", func(t *testing.T) {
		e := NewExtractor([]string{"lottery jackpot"})
		set := e.Extract("you hit the Lottery Jackpot")
		found := false
		for _, k := range set.SuspiciousKeywords {
			if k == "lottery jackpot" {
				found = true
			}
		}
		if !found {
			t.Errorf("SuspiciousKeywords = %v, want to contain %q", set.SuspiciousKeywords, "lottery jackpot")
		}
	})
}

func TestExtract_Pure(t *testing.T) {
	e := NewExtractor(nil)
	text := "urgent: verify at https://x.example, pay 9876543210 via a@ybl, acct 1234 5678 9012"

	first := e.Extract(text)
	second := e.Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract is not pure: first %+v, second %+v", first, second)
	}
}

func TestExtract_EmptySlicesNotNil(t *testing.T) {
	set := NewExtractor(nil).Extract("hello there")

	if set.BankAccounts == nil || set.UPIIDs == nil || set.PhishingLinks == nil ||
		set.PhoneNumbers == nil || set.SuspiciousKeywords == nil {
		t.Errorf("all slices should be non-nil: %+v", set)
	}
}

func TestMerge(t *testing.T) {
	t.Run("union without duplicates", func(t *testing.T) {
		a := IndicatorSet{UPIIDs: []string{"x@paytm"}, SuspiciousKeywords: []string{"urgent"}}
		b := IndicatorSet{UPIIDs: []string{"x@paytm", "y@ybl"}, SuspiciousKeywords: []string{"verify"}}

		got := Merge(a, b)
		if !reflect.DeepEqual(got.UPIIDs, []string{"x@paytm", "y@ybl"}) {
			t.Errorf("UPIIDs = %v", got.UPIIDs)
		}
		if !reflect.DeepEqual(got.SuspiciousKeywords, []string{"urgent", "verify"}) {
			t.Errorf("SuspiciousKeywords = %v", got.SuspiciousKeywords)
		}
	})

	t.Run("monotonic across appended turns", func(t *testing.T) {
		e := NewExtractor(nil)
		turn1 := "send to support123@paytm"
		turn2 := turn1 + " also call 9876543210"

		first := e.Extract(turn1)
		second := Merge(first, e.Extract(turn2))

		for _, v := range first.UPIIDs {
			found := false
			for _, w := range second.UPIIDs {
				if v == w {
					found = true
				}
			}
			if !found {
				t.Errorf("value %q lost after merge", v)
			}
		}
	})
}
