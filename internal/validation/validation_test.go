package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("nama", "  ", v)
	Required("kode", "OK", v)
	if _, ok := v["nama"]; !ok {
		t.Fatal("expected nama violation")
	}
	if _, ok := v["kode"]; ok {
		t.Fatal("kode should pass")
	}
}

func TestNumericValidators(t *testing.T) {
	v := Violations{}
	PositiveFloat("harga", 0, v)
	NonNegativeFloat("diskon", -1, v)
	NonNegativeInt("stok", -1, v)
	PositiveInt("qty", 0, v)
	for _, field := range []string{"harga", "diskon", "stok", "qty"} {
		if _, ok := v[field]; !ok {
			t.Errorf("expected %s violation", field)
		}
	}
	if v.Empty() {
		t.Fatal("violations must not be empty")
	}
}
