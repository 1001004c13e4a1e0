package wirecase

import (
	"reflect"
	"testing"
)

func Test_ToWire(t *testing.T) {
	in := map[string]any{
		"authorName": "alice",
		"parentId":   nil,
		"isDeleted":  false,
		"replies": []any{
			map[string]any{"createdAt": "2025-03-01T12:00:00Z", "id": float64(2)},
		},
		"plain": float64(7),
	}

	want := map[string]any{
		"author_name": "alice",
		"parent_id":   nil,
		"is_deleted":  false,
		"replies": []any{
			map[string]any{"created_at": "2025-03-01T12:00:00Z", "id": float64(2)},
		},
		"plain": float64(7),
	}

	if got := ToWire(in); !reflect.DeepEqual(got, want) {
		t.Errorf("ToWire() = %v, want %v", got, want)
	}
}

func Test_FromWire(t *testing.T) {
	in := map[string]any{
		"author_name":       "bob",
		"ip_address_masked": "10.0.***.***",
		"_private":          true,
		"a_1":               "not converted",
	}

	want := map[string]any{
		"authorName":      "bob",
		"ipAddressMasked": "10.0.***.***",
		"Private":         true,
		"a_1":             "not converted",
	}

	if got := FromWire(in); !reflect.DeepEqual(got, want) {
		t.Errorf("FromWire() = %v, want %v", got, want)
	}
}

// Round-trip на произвольно вложенных структурах без коллизий ключей.
func Test_RoundTrip(t *testing.T) {
	in := map[string]any{
		"topLevel": map[string]any{
			"innerValue": []any{
				map[string]any{"deepKey": "v", "n": float64(1)},
				"string",
				nil,
				true,
			},
		},
		"listOfLists": []any{[]any{map[string]any{"someKey": "x"}}},
	}

	if got := FromWire(ToWire(in)); !reflect.DeepEqual(got, in) {
		t.Errorf("FromWire(ToWire()) = %v, want %v", got, in)
	}
}

func Test_ToWire_scalars(t *testing.T) {
	for _, v := range []any{nil, "str", float64(3), true} {
		if got := ToWire(v); !reflect.DeepEqual(got, v) {
			t.Errorf("ToWire(%v) = %v, want unchanged", v, got)
		}
	}
}
