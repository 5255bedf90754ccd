package models

import "testing"

func TestNormalizeImages(t *testing.T) {
	tests := []struct {
		name        string
		in          []Image
		wantPrimary int
	}{
		{"empty", nil, -1},
		{"single unflagged", []Image{{URL: "a"}}, 0},
		{"none flagged", []Image{{URL: "a"}, {URL: "b"}}, 0},
		{"second flagged", []Image{{URL: "a"}, {URL: "b", IsPrimary: true}}, 1},
		{"several flagged", []Image{{URL: "a", IsPrimary: true}, {URL: "b", IsPrimary: true}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeImages(tt.in)
			if len(got) != len(tt.in) {
				t.Fatalf("len = %v, want %v", len(got), len(tt.in))
			}
			for i, img := range got {
				if img.Order != i {
					t.Errorf("Images[%d].Order = %v, want %v", i, img.Order, i)
				}
				if img.IsPrimary != (i == tt.wantPrimary) {
					t.Errorf("Images[%d].IsPrimary = %v, want %v", i, img.IsPrimary, i == tt.wantPrimary)
				}
				if img.URL != tt.in[i].URL {
					t.Errorf("Images[%d].URL = %v, want %v", i, img.URL, tt.in[i].URL)
				}
			}
		})
	}
}

func TestNormalizeImages_DoesNotMutateInput(t *testing.T) {
	in := []Image{{URL: "a", Order: 7}, {URL: "b", IsPrimary: true, Order: 3}}
	NormalizeImages(in)
	if in[0].Order != 7 || in[1].Order != 3 {
		t.Errorf("input was modified: %+v", in)
	}
}

func TestIsValidRoomStatus(t *testing.T) {
	for _, s := range []string{RoomStatusAvailable, RoomStatusOccupied, RoomStatusReserved, RoomStatusMaintenance, RoomStatusOutOfOrder} {
		if !IsValidRoomStatus(s) {
			t.Errorf("IsValidRoomStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "available", "Disponible"} {
		if IsValidRoomStatus(s) {
			t.Errorf("IsValidRoomStatus(%q) = true, want false", s)
		}
	}
}
