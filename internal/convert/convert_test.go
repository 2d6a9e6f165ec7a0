package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `name: RefDeployment
channels:
  - name: blockDrv.BD_Cycles
    type: {kind: U32}
  - name: sendBuffComp.SendState
    type:
      kind: enum
      enum:
        - {name: IDLE, value: 0}
        - {name: SENDING, value: 1}
  - name: systemResources.CPU
    type:
      kind: array
      length: 2
      member: {kind: F32}
  - name: health.Info
    type:
      kind: serializable
      members:
        - name: label
          type: {kind: string}
        - name: pos
          type:
            kind: array
            length: 2
            member: {kind: bool}
`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func measurementKeys(d *models.Dictionary) []string {
	keys := make([]string, len(d.Measurements))
	for i, m := range d.Measurements {
		keys[i] = m.Key
	}
	return keys
}

func TestConvertFlattensChannels(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, "catalog.yaml", catalogYAML))
	require.NoError(t, err)

	res, err := Convert(c)
	require.NoError(t, err)

	assert.Equal(t, "RefDeployment", res.Dictionary.Name)
	assert.Equal(t, "RefDeployment", res.Dictionary.Key)
	assert.Equal(t, []string{
		"blockDrv_BD_Cycles",
		"sendBuffComp_SendState",
		"systemResources_CPU_0",
		"systemResources_CPU_1",
		"health_Info_label",
		"health_Info_pos_0",
		"health_Info_pos_1",
	}, measurementKeys(res.Dictionary))

	for _, m := range res.Dictionary.Measurements {
		assert.Equal(t, m.Key, m.Name)
		require.Len(t, m.Values, 2)
		assert.Equal(t, "value", m.Values[0]["key"])
		assert.Equal(t, map[string]any{"range": 1}, m.Values[0]["hints"])
		assert.Equal(t, timestampDescriptor(), m.Values[1])
	}

	formats := map[string]string{}
	for _, m := range res.Dictionary.Measurements {
		formats[m.Key] = m.Values[0]["format"].(string)
	}
	assert.Equal(t, "integer", formats["blockDrv_BD_Cycles"])
	assert.Equal(t, "enum", formats["sendBuffComp_SendState"])
	assert.Equal(t, "float", formats["systemResources_CPU_0"])
	assert.Equal(t, "text", formats["health_Info_label"])
	assert.Equal(t, "integer", formats["health_Info_pos_1"])

	enumValue := res.Dictionary.Measurements[1].Values[0]
	assert.Equal(t, []any{
		map[string]any{"string": "IDLE", "value": int64(0)},
		map[string]any{"string": "SENDING", "value": int64(1)},
	}, enumValue["enumerations"])
}

func TestConvertInitialStates(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, "catalog.yaml", catalogYAML))
	require.NoError(t, err)

	res, err := Convert(c)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"blockDrv_BD_Cycles":     0,
		"sendBuffComp_SendState": "IDLE",
		"systemResources_CPU_0":  floatZero,
		"systemResources_CPU_1":  floatZero,
		"health_Info_pos_0":      0,
		"health_Info_pos_1":      0,
	}, res.InitialStates)
}

func TestLoadCatalogDefaultsNameAndReadsJSON(t *testing.T) {
	path := writeCatalog(t, "MPPTDeploymentTopologyAppDictionary.json",
		`{"channels": [{"name": "mppt.Voltage", "type": {"kind": "F64"}}]}`)

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "MPPTDeploymentTopologyAppDictionary", c.Name)
	require.Len(t, c.Channels, 1)
	assert.Equal(t, "F64", c.Channels[0].Type.Kind)
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		wantErr error
	}{
		{
			name:    "unsupported kind",
			catalog: Catalog{Channels: []Channel{{Name: "a.b", Type: Type{Kind: "complex128"}}}},
		},
		{
			name:    "array without member",
			catalog: Catalog{Channels: []Channel{{Name: "a.b", Type: Type{Kind: "array", Length: 2}}}},
		},
		{
			name:    "empty enum",
			catalog: Catalog{Channels: []Channel{{Name: "a.b", Type: Type{Kind: "enum"}}}},
		},
		{
			name:    "missing channel name",
			catalog: Catalog{Channels: []Channel{{Type: Type{Kind: "U8"}}}},
		},
		{
			name: "colliding keys",
			catalog: Catalog{Channels: []Channel{
				{Name: "a.b", Type: Type{Kind: "U8"}},
				{Name: "a_b", Type: Type{Kind: "U8"}},
			}},
			wantErr: models.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(&tt.catalog)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWriteFilesRoundTrip(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, "catalog.yaml", catalogYAML))
	require.NoError(t, err)
	res, err := Convert(c)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "javascript")
	require.NoError(t, res.WriteFiles(out))

	// The written dictionary is what the adapter loads.
	dict, err := dictionary.NewFileLoader(filepath.Join(out, DictionaryFile)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, measurementKeys(res.Dictionary), measurementKeys(dict))
	assert.Equal(t, map[string]any{"range": float64(1)}, dict.Measurements[0].Values[0]["hints"])

	states, err := os.ReadFile(filepath.Join(out, InitialStatesFile))
	require.NoError(t, err)
	assert.Contains(t, string(states), `"sendBuffComp_SendState": "IDLE"`)
	assert.Contains(t, string(states), `"systemResources_CPU_0": 0.0`)
	assert.Contains(t, string(states), `"blockDrv_BD_Cycles": 0,`)
}

const topologyXML = `<?xml version="1.0" encoding="UTF-8"?>
<dictionary topology="Ref" framework_version="3.4.3" project_version="3.4.3">
  <enums>
    <enum type="Ref::Choice">
      <item name="ONE" value="0" description="One choice"/>
      <item name="TWO" value="1"/>
      <item name="RED" value="2"/>
    </enum>
  </enums>
  <serializables>
    <serializable type="Ref::ChoicePair">
      <members>
        <member name="firstChoice" type="Ref::Choice" format_specifier="%s"/>
        <member name="secondChoice" type="Ref::Choice" format_specifier="%s"/>
      </members>
    </serializable>
    <serializable type="Ref::PacketStat">
      <members>
        <member name="BuffRecv" type="U32" format_specifier="%u"/>
        <member name="PacketStatus" type="ENUM" format_specifier="%s">
          <enum name="Ref::PacketRecvStatus">
            <item name="PACKET_STATE_NO_PACKETS" value="0"/>
            <item name="PACKET_STATE_OK" value="1"/>
          </enum>
        </member>
        <member name="Samples" type="F32" size="2" format_specifier="%f"/>
        <member name="Label" type="string" size="40" format_specifier="%s"/>
      </members>
    </serializable>
  </serializables>
  <arrays>
    <array name="Ref::SignalSet">
      <format>%f</format>
      <type>F32</type>
      <size>3</size>
      <defaults><default>0.0</default></defaults>
    </array>
    <array name="Ref::ChoicePairs">
      <format>%s</format>
      <type>Ref::ChoicePair</type>
      <size>2</size>
    </array>
  </arrays>
  <commands>
    <command component="cmdDisp" mnemonic="CMD_NO_OP" opcode="0x0" description="No-op"/>
  </commands>
  <channels>
    <channel component="blockDrv" name="BD_Cycles" id="0x100" telemetry_type="channel" type="U32" description="Driver cycles" format_string="%u"/>
    <channel component="sendBuffComp" name="SendState" id="0x101" telemetry_type="channel" type="ENUM">
      <enum name="Ref::SendBuff::ActiveState">
        <item name="SEND_IDLE" value="0"/>
        <item name="SEND_ACTIVE"/>
      </enum>
    </channel>
    <channel component="SG1" name="Choice" id="0x102" telemetry_type="channel" type="Ref::Choice"/>
    <channel component="SG1" name="Signals" id="0x103" telemetry_type="channel" type="Ref::SignalSet"/>
    <channel component="recvBuffComp" name="PktState" id="0x104" telemetry_type="channel" type="Ref::PacketStat"/>
    <channel component="typeDemo" name="Pairs" id="0x105" telemetry_type="channel" type="Ref::ChoicePairs"/>
    <channel component="fileDownlink" name="LastFile" id="0x106" telemetry_type="channel" type="string" len="40"/>
  </channels>
</dictionary>
`

func TestLoadTopologyDictionary(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, "RefTopologyAppDictionary.xml", topologyXML))
	require.NoError(t, err)
	assert.Equal(t, "RefTopologyAppDictionary", c.Name)

	res, err := Convert(c)
	require.NoError(t, err)

	assert.Equal(t, "RefTopologyAppDictionary", res.Dictionary.Key)
	assert.Equal(t, []string{
		"blockDrv_BD_Cycles",
		"sendBuffComp_SendState",
		"SG1_Choice",
		"SG1_Signals_0",
		"SG1_Signals_1",
		"SG1_Signals_2",
		"recvBuffComp_PktState_BuffRecv",
		"recvBuffComp_PktState_PacketStatus",
		"recvBuffComp_PktState_Samples_0",
		"recvBuffComp_PktState_Samples_1",
		"recvBuffComp_PktState_Label",
		"typeDemo_Pairs_0_firstChoice",
		"typeDemo_Pairs_0_secondChoice",
		"typeDemo_Pairs_1_firstChoice",
		"typeDemo_Pairs_1_secondChoice",
		"fileDownlink_LastFile",
	}, measurementKeys(res.Dictionary))

	formats := map[string]string{}
	for _, m := range res.Dictionary.Measurements {
		formats[m.Key] = m.Values[0]["format"].(string)
	}
	assert.Equal(t, "integer", formats["blockDrv_BD_Cycles"])
	assert.Equal(t, "enum", formats["SG1_Choice"])
	assert.Equal(t, "float", formats["SG1_Signals_2"])
	assert.Equal(t, "enum", formats["recvBuffComp_PktState_PacketStatus"])
	assert.Equal(t, "float", formats["recvBuffComp_PktState_Samples_1"])
	assert.Equal(t, "text", formats["recvBuffComp_PktState_Label"])
	assert.Equal(t, "enum", formats["typeDemo_Pairs_1_secondChoice"])
	assert.Equal(t, "text", formats["fileDownlink_LastFile"])

	assert.Equal(t, []any{
		map[string]any{"string": "SEND_IDLE", "value": int64(0)},
		map[string]any{"string": "SEND_ACTIVE", "value": int64(1)},
	}, res.Dictionary.Measurements[1].Values[0]["enumerations"])

	assert.Equal(t, "ONE", res.InitialStates["typeDemo_Pairs_0_firstChoice"])
	assert.Equal(t, "PACKET_STATE_NO_PACKETS", res.InitialStates["recvBuffComp_PktState_PacketStatus"])
	assert.Equal(t, floatZero, res.InitialStates["SG1_Signals_0"])
	assert.NotContains(t, res.InitialStates, "fileDownlink_LastFile")
}

func TestParseTopologyDictionaryErrors(t *testing.T) {
	channels := func(body string) string {
		return `<dictionary topology="Ref">` + body + `</dictionary>`
	}

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "malformed xml",
			doc:  `<dictionary><channels>`,
		},
		{
			name: "unknown type",
			doc:  channels(`<channels><channel component="a" name="b" type="Ref::Missing"/></channels>`),
		},
		{
			name: "enum channel without definition",
			doc:  channels(`<channels><channel component="a" name="b" type="ENUM"/></channels>`),
		},
		{
			name: "array with bad size",
			doc: channels(`<arrays><array name="Ref::A"><type>U8</type><size>zero</size></array></arrays>` +
				`<channels><channel component="a" name="b" type="Ref::A"/></channels>`),
		},
		{
			name: "self referencing serializable",
			doc: channels(`<serializables><serializable type="Ref::Loop"><members>` +
				`<member name="next" type="Ref::Loop"/></members></serializable></serializables>` +
				`<channels><channel component="a" name="b" type="Ref::Loop"/></channels>`),
		},
		{
			name: "bad enum value",
			doc: channels(`<enums><enum type="Ref::E"><item name="X" value="high"/></enum></enums>` +
				`<channels><channel component="a" name="b" type="Ref::E"/></channels>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTopologyDictionary(strings.NewReader(tt.doc), "Ref")
			assert.Error(t, err)
		})
	}
}

func TestParseTopologyDictionaryWithoutComponent(t *testing.T) {
	c, err := ParseTopologyDictionary(strings.NewReader(
		`<dictionary><channels><channel name="Uptime" type="U32"/></channels></dictionary>`), "Ref")
	require.NoError(t, err)
	require.Len(t, c.Channels, 1)
	assert.Equal(t, "Uptime", c.Channels[0].Name)
	assert.Equal(t, "U32", c.Channels[0].Type.Kind)
}
