package cli

import (
	"reflect"
	"testing"
)

func TestParseVizTypes(t *testing.T) {
	if got := parseVizTypes(""); !reflect.DeepEqual(got, []string{vizPlot}) {
		t.Errorf("parseVizTypes(\"\") = %v, want [plot]", got)
	}
	if got := parseVizTypes("plot,graph"); !reflect.DeepEqual(got, []string{"plot", "graph"}) {
		t.Errorf("parseVizTypes(\"plot,graph\") = %v", got)
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); !reflect.DeepEqual(got, []string{formatSVG}) {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	if got := parseFormats("svg,png"); !reflect.DeepEqual(got, []string{"svg", "png"}) {
		t.Errorf("parseFormats(\"svg,png\") = %v", got)
	}
}

func TestValidateVizTypes(t *testing.T) {
	if err := validateVizTypes([]string{"plot", "graph"}); err != nil {
		t.Errorf("valid types rejected: %v", err)
	}
	if err := validateVizTypes([]string{"tower"}); err == nil {
		t.Error("unknown type should be rejected")
	}
}

func TestValidateFormats(t *testing.T) {
	if err := validateFormats([]string{"svg", "pdf", "png"}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := validateFormats([]string{"gif"}); err == nil {
		t.Error("unknown format should be rejected")
	}
}
