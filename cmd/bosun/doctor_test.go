package main

import (
	"bytes"
	"testing"

	"github.com/harborview/bosun/internal/doctor"
	"github.com/harborview/bosun/internal/output"
	"github.com/harborview/bosun/internal/terminal"
	"github.com/harborview/bosun/internal/testutil"
)

// renderDoctorOutput reproduces the doctor command's output formatting logic
// with the given results, so golden tests can run without real checks.
func renderDoctorOutput(results []doctor.Result) string {
	var buf bytes.Buffer

	term := &terminal.Info{IsTTY: false, NoColor: true, Width: 80}
	out := output.NewWriter(&buf, &buf, term)

	out.Println("Bosun Doctor")
	out.Println("============")
	out.Println()

	doctor.RenderResults(results, out.Print, out.Success, out.Warning, out.Failure, out.Muted)

	passed, failed, warnings := doctor.Summary(results)

	out.Println()
	out.Print("%d passed", passed)

	if failed > 0 {
		out.Print(", %d failed", failed)
	}

	if warnings > 0 {
		out.Print(", %d warning(s)", warnings)
	}

	out.Println()

	return buf.String()
}

func TestDoctorOutput_AllPass_Golden(t *testing.T) {
	results := []doctor.Result{
		{Name: "Shell", Status: doctor.StatusPass, Message: "sh at /bin/sh"},
		{Name: "Project Root", Status: doctor.StatusPass, Message: "/work/harborview (marker: bosun.yaml)"},
		{Name: "Env File", Status: doctor.StatusPass, Message: "/work/harborview/.env (12 variables)"},
		{Name: "Service Manifest", Status: doctor.StatusPass, Message: "2 services: api, web"},
		{Name: "Node.js Toolchain", Status: doctor.StatusPass, Message: "node v20.11.0 with npm"},
		{Name: "CLI Version", Status: doctor.StatusPass, Message: "v1.4.0 (latest)"},
	}

	got := renderDoctorOutput(results)
	testutil.AssertGolden(t, got, "doctor_all_pass.golden")
}

func TestDoctorOutput_Mixed_Golden(t *testing.T) {
	results := []doctor.Result{
		{Name: "Shell", Status: doctor.StatusPass, Message: "sh at /bin/sh"},
		{Name: "Project Root", Status: doctor.StatusPass, Message: "/work/harborview (marker: .git)"},
		{Name: "Env File", Status: doctor.StatusFail, Message: "/work/harborview/.env", Detail: "read env file /work/harborview/.env: permission denied"},
		{Name: "Service Manifest", Status: doctor.StatusWarn, Message: "No services declared", Detail: "Add services to bosun.yaml to use 'bosun service'"},
		{Name: "Node.js Toolchain", Status: doctor.StatusWarn, Message: "node not found in PATH", Detail: "Install Node.js to run the frontend dev servers"},
		{Name: "CLI Version", Status: doctor.StatusWarn, Message: "v1.3.0 (v1.4.0 available)", Detail: "Run 'bosun update' to update"},
	}

	got := renderDoctorOutput(results)
	testutil.AssertGolden(t, got, "doctor_mixed.golden")
}
