package domain

import "testing"

func TestOutcomeStatus(t *testing.T) {
	task := Task{Name: "a.png", OutputName: "a", SourceType: SourceTypeLocalFile, SourceKey: "in/a.png"}

	ok := Success(task, "out/a.png")
	if ok.Failed() || ok.Status() != StatusSucceeded {
		t.Fatalf("expected success, got status=%s", ok.Status())
	}
	if ok.Stage != StageEncoded {
		t.Fatalf("expected stage %s, got %s", StageEncoded, ok.Stage)
	}

	failed := Failure(task, StageDecoded, ErrorKindDecode, "corrupt")
	if !failed.Failed() || failed.Status() != StatusFailed {
		t.Fatalf("expected failure, got status=%s", failed.Status())
	}

	skipped := Success(task, "out/a.png")
	skipped.Skipped = true
	if skipped.Status() != StatusSkipped {
		t.Fatalf("expected skipped, got %s", skipped.Status())
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{Name: "logo.png", OutputName: "logo", SourceType: SourceTypeLocalFile, SourceKey: "in/logo.png"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}

	if err := (Task{}).Validate(); err == nil {
		t.Fatal("expected validation error for empty task")
	}

	missingOutput := valid
	missingOutput.OutputName = " "
	if err := missingOutput.Validate(); err == nil {
		t.Fatal("expected validation error for missing output name")
	}

	unsupported := valid
	unsupported.SourceType = "http_url"
	if err := unsupported.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported source_type")
	}
}
