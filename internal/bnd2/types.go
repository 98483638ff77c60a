package bnd2

import "fmt"

// MaxKnownType is the highest recognised type tag (spec.md §4.3 rule 5:
// any entry with type > MaxKnownType is rejected outright during bundle
// validation, even if the tag would otherwise decode to a plausible
// value).
const MaxKnownType = 0x11004

// ShaderType is the one tag whose human name depends on target
// platform: "Shader" on PC, "ShaderTechnique" on X360/PS3 (spec.md
// §4.5 "Shader-type aliasing").
const ShaderType = 0x32

// typeNames is the fixed bidirectional mapping between numeric type
// tags and human-readable resource category names, carried over from
// the reference tool's resourceTypes table.
var typeNames = map[uint32]string{
	0x0:  "Texture",
	0x1:  "Material",
	0x2:  "RenderableMesh",
	0x3:  "TextFile",
	0x4:  "DrawIndexParams",
	0x5:  "IndexBuffer",
	0x6:  "MeshState",
	0x7:  "TextureAuxInfo",
	0x8:  "VertexBufferItem",
	0x9:  "VertexBuffer",
	0xA:  "VertexDescriptor",
	0xB:  "MaterialCRC32",
	0xC:  "Renderable",
	0xD:  "MaterialTechnique",
	0xE:  "TextureState",
	0xF:  "MaterialState",
	0x10: "DepthStencilState",
	0x11: "RasterizerState",
	0x12: "ShaderProgramBuffer",
	0x13: "RenderTargetState",
	0x14: "ShaderParameter",
	0x15: "RenderableAssembly",
	0x16: "Debug",
	0x17: "KdTree",
	0x18: "VoiceHierarchy",
	0x19: "Snr",
	0x1A: "InterpreterData",
	0x1B: "AttribSysSchema",
	0x1C: "AttribSysVault",
	0x1D: "EntryList",
	0x1E: "AptData",
	0x1F: "GuiPopup",
	0x21: "Font",
	0x22: "LuaCode",
	0x23: "InstanceList",
	0x24: "ClusteredMesh",
	0x25: "IdList",
	0x26: "InstanceCollisionList",
	0x27: "Language",
	0x28: "SatNavTile",
	0x29: "SatNavTileDirectory",
	0x2A: "Model",
	0x2B: "ColourCube",
	0x2C: "HudMessage",
	0x2D: "HudMessageList",
	0x2E: "HudMessageSequence",
	0x2F: "HudMessageSequenceDictionary",
	0x30: "WorldPainter2D",
	0x31: "PFXHookBundle",
	0x32: "Shader", // overridden to "ShaderTechnique" off-PC, see TypeName
	0x40: "RawFile",
	0x41: "ICETakeDictionary",
	0x42: "VideoData",
	0x43: "PolygonSoupList",
	0x44: "DeveloperList",
	0x45: "CommsToolListDefinition",
	0x46: "CommsToolList",
	0x50: "BinaryFile",
	0x51: "AnimationCollection",
	0x2710:  "CharAnimBankFile",
	0x2711:  "WeaponFile",
	0x343E:  "VFXFile",
	0x343F:  "BearFile",
	0x3A98:  "BkPropInstanceList",
	0xA000:  "Registry",
	0xA010:  "GenericRwacFactoryConfiguration",
	0xA020:  "GenericRwacWaveContent",
	0xA021:  "GinsuWaveContent",
	0xA022:  "AemsBank",
	0xA023:  "Csis",
	0xA024:  "Nicotine",
	0xA025:  "Splicer",
	0xA026:  "FreqContent",
	0xA027:  "VoiceHierarchyCollection",
	0xA028:  "GenericRwacReverbIRContent",
	0xA029:  "SnapshotData",
	0xB000:  "ZoneList",
	0xC001:  "VFX",
	0x10000: "LoopModel",
	0x10001: "AISections",
	0x10002: "TrafficData",
	0x10003: "TriggerData",
	0x10004: "DeformationModel",
	0x10005: "VehicleList",
	0x10006: "GraphicsSpec",
	0x10007: "PhysicsSpec",
	0x10008: "ParticleDescriptionCollection",
	0x10009: "WheelList",
	0x1000A: "WheelGraphicsSpec",
	0x1000B: "TextureNameMap",
	0x1000C: "ICEList",
	0x1000D: "ICEData",
	0x1000E: "ProgressionData",
	0x1000F: "PropPhysics",
	0x10010: "PropGraphicsList",
	0x10011: "PropInstanceData",
	0x10012: "EnvironmentKeyframe",
	0x10013: "EnvironmentTimeLine",
	0x10014: "EnvironmentDictionary",
	0x10015: "GraphicsStub",
	0x10016: "StaticSoundMap",
	0x10017: "PFXHookBundle",
	0x10018: "StreetData",
	0x10019: "VFXMeshCollection",
	0x1001A: "MassiveLookupTable",
	0x1001B: "VFXPropCollection",
	0x1001C: "StreamedDeformationSpec",
	0x1001D: "ParticleDescription",
	0x1001E: "PlayerCarColours",
	0x1001F: "ChallengeList",
	0x10020: "FlaptFile",
	0x10021: "ProfileUpgrade",
	0x10022: "OfflineChallengeList",
	0x10023: "VehicleAnimation",
	0x10024: "BodypartRemapData",
	0x10025: "LUAList",
	0x10026: "LUAScript",
	0x11000: "BkSoundWeapon",
	0x11001: "BkSoundGunsu",
	0x11002: "BkSoundBulletImpact",
	0x11003: "BkSoundBulletImpactList",
	0x11004: "BkSoundBulletImpactStream",
}

// nameToType is the inverse of typeNames, built once at init. Both
// "Shader" and "ShaderTechnique" map to 0x32.
var nameToType map[string]uint32

func init() {
	nameToType = make(map[string]uint32, len(typeNames)+1)
	for tag, name := range typeNames {
		nameToType[name] = tag
	}
	nameToType["ShaderTechnique"] = ShaderType
}

// TypeName renders a type tag as a human-readable name for the given
// platform, or as "0x<HEX>" if the tag is unrecognised. PC renders 0x32
// as "Shader"; X360 and PS3 render it as "ShaderTechnique".
func TypeName(tag uint32, platform Platform) string {
	if tag == ShaderType && platform != PlatformPC {
		return "ShaderTechnique"
	}
	if name, ok := typeNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", tag)
}

// TypeFromName resolves a human-readable name (or a "0x<HEX>" literal)
// back to its numeric tag. Unknown, non-hex-literal names return
// ok == false.
func TypeFromName(name string) (tag uint32, ok bool) {
	if t, found := nameToType[name]; found {
		return t, true
	}
	var parsed uint32
	if n, err := fmt.Sscanf(name, "0x%X", &parsed); err == nil && n == 1 {
		return parsed, true
	}
	return 0, false
}
