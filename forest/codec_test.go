package forest

import "testing"

func TestGobRoundTrip(t *testing.T) {
	f := oneTreeRegression()
	data, err := Marshal(f, GobCodec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data, GobCodec)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.NTree != f.NTree || len(got.Pred) != len(f.Pred) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	f := oneTreeRegression()
	data, err := Marshal(f, JSONCodec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data, JSONCodec)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, v := range f.Num {
		if got.Num[i] != v {
			t.Errorf("Num[%d] = %v, want %v", i, got.Num[i], v)
		}
	}
}
