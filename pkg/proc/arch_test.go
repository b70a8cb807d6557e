package proc

import "testing"

func TestArchByName(t *testing.T) {
	tests := []struct {
		name    string
		ptrSize int
		pc      string
	}{
		{"amd64", 8, "rip"},
		{"386", 4, "eip"},
		{"arm64", 8, "pc"},
	}
	for _, tc := range tests {
		arch, ok := ArchByName(tc.name)
		if !ok {
			t.Fatalf("ArchByName(%q) not found", tc.name)
		}
		if arch.Name != tc.name || arch.PtrSize != tc.ptrSize || arch.PCRegister != tc.pc {
			t.Errorf("ArchByName(%q) = %+v", tc.name, arch)
		}
		if arch.PageSize != 0x1000 {
			t.Errorf("%s: expected a 4KiB page size, got %#x", tc.name, arch.PageSize)
		}
		if len(arch.BreakpointInstruction) == 0 {
			t.Errorf("%s has no breakpoint instruction", tc.name)
		}
	}

	if _, ok := ArchByName("mips"); ok {
		t.Error("expected mips to be unsupported")
	}
}

func TestHostArchNeverNil(t *testing.T) {
	arch := HostArch()
	if arch == nil {
		t.Fatal("expected a descriptor for every build architecture")
	}
	if arch.PtrSize == 0 || arch.PageSize == 0 || arch.PCRegister == "" {
		t.Fatalf("incomplete host descriptor %+v", arch)
	}
}
