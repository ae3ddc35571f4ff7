package geo

import "testing"

func TestOpen_EmptyPath_ReturnsNoOpReader(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil Reader")
	}
}

func TestLookup_PrivateRanges_ReturnLocal(t *testing.T) {
	r, _ := Open("")
	for _, ip := range []string{
		"127.0.0.1",
		"localhost",
		"192.168.1.50",
		"10.0.0.7",
		"::ffff:127.0.0.1",
		"::ffff:192.168.0.1",
	} {
		got := r.Lookup(ip)
		if got != localResult {
			t.Errorf("Lookup(%q) = %+v, want Local tuple", ip, got)
		}
	}
}

func TestLookup_PublicIP_NoDatabase_ReturnsUnknown(t *testing.T) {
	r, _ := Open("")
	got := r.Lookup("8.8.8.8")
	if got != unknownResult {
		t.Errorf("Lookup(8.8.8.8) = %+v, want Unknown tuple", got)
	}
}

func TestLookup_InvalidIP_ReturnsUnknown(t *testing.T) {
	r, _ := Open("")
	if got := r.Lookup("not-an-ip"); got != unknownResult {
		t.Errorf("Lookup(not-an-ip) = %+v, want Unknown tuple", got)
	}
}

// 172.16.0.0/12 is deliberately not short-circuited; it resolves like any
// public address.
func TestLookup_CarrierGradeRange_NotLocal(t *testing.T) {
	r, _ := Open("")
	if got := r.Lookup("172.16.0.1"); got == localResult {
		t.Error("172.16.0.1 should not map to the Local tuple")
	}
}

func TestLookup_Deterministic(t *testing.T) {
	r, _ := Open("")
	first := r.Lookup("8.8.8.8")
	for j := 0; j < 10; j++ {
		if got := r.Lookup("8.8.8.8"); got != first {
			t.Fatalf("lookup not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestClose_NoOpReader_NoPanic(t *testing.T) {
	r, _ := Open("")
	r.Close() // should not panic
}
