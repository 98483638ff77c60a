package bnd2

import "testing"

func TestTypeNameShaderAliasing(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{PlatformPC, "Shader"},
		{PlatformX360, "ShaderTechnique"},
		{PlatformPS3, "ShaderTechnique"},
	}
	for _, tt := range tests {
		if got := TypeName(ShaderType, tt.platform); got != tt.want {
			t.Errorf("TypeName(ShaderType, %v) = %q, want %q", tt.platform, got, tt.want)
		}
	}
}

func TestTypeNameKnownAndUnknown(t *testing.T) {
	if got := TypeName(0x0, PlatformPC); got != "Texture" {
		t.Errorf("TypeName(0x0, PC) = %q, want %q", got, "Texture")
	}
	if got := TypeName(0xDEAD, PlatformPC); got != "0xDEAD" {
		t.Errorf("TypeName(unknown) = %q, want hex fallback %q", got, "0xDEAD")
	}
}

func TestTypeFromNameRoundTrip(t *testing.T) {
	tag, ok := TypeFromName("Texture")
	if !ok || tag != 0x0 {
		t.Errorf("TypeFromName(Texture) = %#x, %v, want 0x0, true", tag, ok)
	}

	tag, ok = TypeFromName("ShaderTechnique")
	if !ok || tag != ShaderType {
		t.Errorf("TypeFromName(ShaderTechnique) = %#x, %v, want %#x, true", tag, ok, ShaderType)
	}

	tag, ok = TypeFromName("0x2A")
	if !ok || tag != 0x2A {
		t.Errorf("TypeFromName(0x2A) = %#x, %v, want 0x2A, true", tag, ok)
	}

	if _, ok := TypeFromName("NotARealType"); ok {
		t.Error("TypeFromName(NotARealType) ok = true, want false")
	}
}
