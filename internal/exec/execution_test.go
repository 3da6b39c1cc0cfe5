package exec

import "testing"

func TestIsUnloadQuery(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"UNLOAD (SELECT * FROM t) TO 's3://bkt/out/'", true},
		{"  unload (select 1) to 's3://bkt/out/'", true},
		{"\n\tUnLoad (select 1) to 's3://bkt/out/'", true},
		{"SELECT * FROM t", false},
		{"SELECT 'UNLOAD' FROM t", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsUnloadQuery(tc.query); got != tc.want {
			t.Fatalf("IsUnloadQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	unload := QueryExecution{
		Query:          "UNLOAD (SELECT 1) TO 's3://bkt/out/'",
		State:          StateSucceeded,
		OutputLocation: "s3://bkt/results/q-1",
	}
	if got := Classify(unload, true); got != ShapeColumnar {
		t.Fatalf("Classify(unload, enabled) = %v", got)
	}
	if got := Classify(unload, false); got != ShapeDelimited {
		t.Fatalf("Classify(unload, disabled) = %v", got)
	}

	selectExec := QueryExecution{
		Query:          "SELECT * FROM t",
		State:          StateSucceeded,
		OutputLocation: "s3://bkt/results/q-2.csv",
	}
	if got := Classify(selectExec, true); got != ShapeDelimited {
		t.Fatalf("Classify(select) = %v", got)
	}

	failed := selectExec
	failed.State = StateFailed
	if got := Classify(failed, true); got != ShapeEmpty {
		t.Fatalf("Classify(failed) = %v", got)
	}

	noOutput := selectExec
	noOutput.OutputLocation = ""
	if got := Classify(noOutput, true); got != ShapeEmpty {
		t.Fatalf("Classify(no output) = %v", got)
	}
}

func TestManifestLocation(t *testing.T) {
	execution := QueryExecution{OutputLocation: "s3://bkt/results/q-1"}
	if got := execution.ManifestLocation(); got != "s3://bkt/results/q-1-manifest.csv" {
		t.Fatalf("ManifestLocation() = %q", got)
	}

	execution.DataManifestLocation = "s3://bkt/results/q-1-manifest.csv"
	if got := execution.ManifestLocation(); got != "s3://bkt/results/q-1-manifest.csv" {
		t.Fatalf("ManifestLocation() with explicit = %q", got)
	}

	if got := (QueryExecution{}).ManifestLocation(); got != "" {
		t.Fatalf("ManifestLocation() empty descriptor = %q", got)
	}
}
