package models

import "testing"

func TestParseBands_SkipsMalformedLines(t *testing.T) {
	def := "1.0;93.0;100.1\n" +
		"мусорная строка\n" +
		"2.0;79.0\n" + // не хватает поля
		"3.0;abc;72.0\n" + // не число
		"6.0;0.0;19.0\n" +
		"\n"
	bands := ParseBands(def)
	if len(bands) != 2 {
		t.Fatalf("ожидали 2 валидных диапазона, получили %d: %#v", len(bands), bands)
	}
	if bands[0].Label != "1.0" || bands[1].Label != "6.0" {
		t.Fatalf("неожиданные метки: %#v", bands)
	}
}

func TestBand_ContainsHalfOpen(t *testing.T) {
	b := Band{Label: "2.0", Min: 79.0, Max: 86.0}
	if !b.Contains(79.0) {
		t.Error("нижняя граница должна входить")
	}
	if b.Contains(86.0) {
		t.Error("верхняя граница не входит")
	}
	if !b.Contains(85.999) {
		t.Error("значение внутри диапазона")
	}
}

func TestGradeFor(t *testing.T) {
	scale := GradeScale{Definition: "1.0;93.0;100.1\n2.0;79.0;86.0\n6.0;0.0;19.0"}
	bands := scale.Bands()

	if g, ok := GradeFor(bands, 85.0); !ok || g != "2.0" {
		t.Fatalf("85%% -> %q, ok=%v", g, ok)
	}
	if g, ok := GradeFor(bands, 100.0); !ok || g != "1.0" {
		t.Fatalf("100%% -> %q, ok=%v", g, ok)
	}
	// 50% не попадает ни в один диапазон этой шкалы
	if _, ok := GradeFor(bands, 50.0); ok {
		t.Fatal("дыра в шкале не должна давать оценку")
	}
	if _, ok := GradeFor(nil, 50.0); ok {
		t.Fatal("пустая шкала не должна давать оценку")
	}
}
