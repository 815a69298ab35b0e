package serumdex

import (
	"encoding/binary"
	"errors"
	"testing"

	"serum-indexer-sol/internal/logic/ixparser/common"
	"serum-indexer-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeFixture struct {
	name string
	data []byte
	want Instruction
}

// 每种指令一条合法样例，字节按 [版本][tag u32][payload] 排列
var validFixtures = []decodeFixture{
	{
		name: "InitializeMarket",
		data: []byte{
			0x00, 0x00, 0x00, 0x00, 0x00,
			0x64, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // coin_lot_size = 100
			0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // pc_lot_size = 10
			0x16, 0x00, // fee_rate_bps = 22
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // vault_signer_nonce = 1
			0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // pc_dust_threshold = 5
		},
		want: InitializeMarket{CoinLotSize: 100, PcLotSize: 10, FeeRateBps: 22, VaultSignerNonce: 1, PcDustThreshold: 5},
	},
	{
		name: "NewOrder",
		data: []byte{
			0x00, 0x01, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00, // side = Ask
			0xe8, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // limit_price = 1000
			0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_qty = 5
			0x02, 0x00, 0x00, 0x00, // order_type = PostOnly
			0x2a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // client_id = 42
		},
		want: NewOrder{Side: SideAsk, LimitPrice: 1000, MaxQty: 5, OrderType: OrderTypePostOnly, ClientID: 42},
	},
	{
		name: "MatchOrders",
		data: []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0x0a, 0x00},
		want: MatchOrders{Limit: 10},
	},
	{
		name: "ConsumeEvents",
		data: []byte{0x00, 0x03, 0x00, 0x00, 0x00, 0x02, 0x01},
		want: ConsumeEvents{Limit: 258},
	},
	{
		name: "CancelOrder",
		data: []byte{
			0x00, 0x04, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, // side = Bid
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // order_id lo
			0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // order_id hi
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // owner[0]
			0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // owner[1]
			0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // owner[2]
			0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // owner[3]
			0x07, // owner_slot
		},
		want: CancelOrder{
			Side:      SideBid,
			OrderID:   types.Uint128{Lo: 1, Hi: 2},
			Owner:     [4]uint64{1, 2, 3, 4},
			OwnerSlot: 7,
		},
	},
	{
		name: "SettleFunds",
		data: []byte{0x00, 0x05, 0x00, 0x00, 0x00},
		want: SettleFunds{},
	},
	{
		name: "CancelOrderByClientId",
		data: []byte{0x00, 0x06, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		want: CancelOrderByClientID{ClientID: 0x0807060504030201},
	},
	{
		name: "DisableMarket",
		data: []byte{0x00, 0x07, 0x00, 0x00, 0x00},
		want: DisableMarket{},
	},
	{
		name: "SweepFees",
		data: []byte{0x00, 0x08, 0x00, 0x00, 0x00},
		want: SweepFees{},
	},
	{
		name: "NewOrderV2",
		data: []byte{
			0x00, 0x09, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, // side = Bid
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // limit_price = 1
			0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_qty = 2
			0x01, 0x00, 0x00, 0x00, // order_type = ImmediateOrCancel
			0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // client_id = 3
			0x02, // self_trade_behavior = AbortTransaction（单字节）
		},
		want: NewOrderV2{
			Side:              SideBid,
			LimitPrice:        1,
			MaxQty:            2,
			OrderType:         OrderTypeImmediateOrCancel,
			ClientID:          3,
			SelfTradeBehavior: SelfTradeAbortTransaction,
		},
	},
	{
		name: "NewOrderV3",
		data: []byte{
			0x00, 0x0a, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00, // side = Ask
			0x64, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // limit_price = 100
			0xc8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_coin_qty = 200
			0x2c, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_native_pc_qty_including_fees = 300
			0x01, 0x00, 0x00, 0x00, // self_trade_behavior = CancelProvide
			0x00, 0x00, 0x00, 0x00, // order_type = Limit
			0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // client_order_id = 9
			0xff, 0xff, // limit = 65535
		},
		want: NewOrderV3{
			Side:                        SideAsk,
			LimitPrice:                  100,
			MaxCoinQty:                  200,
			MaxNativePcQtyIncludingFees: 300,
			SelfTradeBehavior:           SelfTradeCancelProvide,
			OrderType:                   OrderTypeLimit,
			ClientOrderID:               9,
			Limit:                       65535,
		},
	},
	{
		name: "CancelOrderV2",
		data: []byte{
			0x00, 0x0b, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00, // side = Ask
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		},
		want: CancelOrderV2{Side: SideAsk, OrderID: types.Uint128{Lo: ^uint64(0)}},
	},
	{
		name: "CancelOrderByClientIdV2",
		data: []byte{0x00, 0x0c, 0x00, 0x00, 0x00, 0x4d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		want: CancelOrderByClientIDV2{ClientID: 77},
	},
	{
		name: "SendTake",
		data: []byte{
			0x00, 0x0d, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, // side = Bid
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // limit_price = 1
			0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_coin_qty = 2
			0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // max_native_pc_qty_including_fees = 3
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // min_coin_qty = 0
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // min_native_pc_qty = 0
			0x05, 0x00, // limit = 5
		},
		want: SendTake{Side: SideBid, LimitPrice: 1, MaxCoinQty: 2, MaxNativePcQtyIncludingFees: 3, Limit: 5},
	},
	{
		name: "CloseOpenOrders",
		data: []byte{0x00, 0x0e, 0x00, 0x00, 0x00},
		want: CloseOpenOrders{},
	},
	{
		name: "InitOpenOrders",
		data: []byte{0x00, 0x0f, 0x00, 0x00, 0x00},
		want: InitOpenOrders{},
	},
	{
		name: "Prune",
		data: []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x03, 0x00},
		want: Prune{Limit: 3},
	},
	{
		name: "ConsumeEventsPermissioned",
		data: []byte{0x00, 0x11, 0x00, 0x00, 0x00, 0x04, 0x00},
		want: ConsumeEventsPermissioned{Limit: 4},
	},
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	for _, f := range validFixtures {
		if f.name == name {
			out := make([]byte, len(f.data))
			copy(out, f.data)
			return out
		}
	}
	t.Fatalf("fixture %s not found", name)
	return nil
}

func TestDecodeAllVariants(t *testing.T) {
	require.Len(t, validFixtures, int(tagCount))

	for i, tc := range validFixtures {
		t.Run(tc.name, func(t *testing.T) {
			ix, ok := Decode(tc.data)
			require.True(t, ok)
			assert.Equal(t, tc.want, ix)
			assert.Equal(t, Tag(i), ix.Tag())
			assert.Equal(t, tc.name, ix.Tag().String())
			assert.Equal(t, len(tc.data)-headerSize, ix.Tag().PayloadSize())
		})
	}
}

func TestDecodeIgnoresVersionByte(t *testing.T) {
	data := fixture(t, "MatchOrders")
	data[0] = 0xff
	ix, ok := Decode(data)
	require.True(t, ok)
	assert.Equal(t, MatchOrders{Limit: 10}, ix)
}

func TestDecodeUnknownTag(t *testing.T) {
	for _, tag := range []uint32{18, 19, 100, 255, 256, 1 << 16, 1 << 24, 0xffffffff} {
		data := make([]byte, headerSize+64)
		binary.LittleEndian.PutUint32(data[1:headerSize], tag)

		ix, ok := Decode(data)
		assert.False(t, ok, "tag=%d", tag)
		assert.Nil(t, ix)

		_, err := DecodeDetailed(data)
		assert.ErrorIs(t, err, ErrUnknownTag)
	}
}

func TestDecodeShortHeader(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x00}, {0x00, 0x02, 0x00, 0x00}} {
		ix, ok := Decode(data)
		assert.False(t, ok)
		assert.Nil(t, ix)

		_, err := DecodeDetailed(data)
		assert.ErrorIs(t, err, ErrShortInstruction)
	}
}

func TestDecodeZeroNonZeroField(t *testing.T) {
	cases := []struct {
		fixture string
		field   string
		offset  int
	}{
		{"NewOrder", "limit_price", 9},
		{"NewOrder", "max_qty", 17},
		{"NewOrderV2", "limit_price", 9},
		{"NewOrderV2", "max_qty", 17},
		{"NewOrderV3", "limit_price", 9},
		{"NewOrderV3", "max_coin_qty", 17},
		{"NewOrderV3", "max_native_pc_qty_including_fees", 25},
		{"SendTake", "limit_price", 9},
		{"SendTake", "max_coin_qty", 17},
		{"SendTake", "max_native_pc_qty_including_fees", 25},
	}

	for _, tc := range cases {
		t.Run(tc.fixture+"/"+tc.field, func(t *testing.T) {
			data := fixture(t, tc.fixture)
			for i := tc.offset; i < tc.offset+8; i++ {
				data[i] = 0
			}

			ix, ok := Decode(data)
			assert.False(t, ok)
			assert.Nil(t, ix)

			_, err := DecodeDetailed(data)
			assert.ErrorIs(t, err, common.ErrZeroValue)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestDecodeInvalidOrdinal(t *testing.T) {
	cases := []struct {
		fixture string
		field   string
		offset  int
		value   byte
	}{
		{"NewOrder", "side", 5, 2},
		{"NewOrder", "order_type", 25, 3},
		{"CancelOrder", "side", 5, 0xff},
		{"NewOrderV2", "self_trade_behavior", 37, 3},
		{"NewOrderV3", "self_trade_behavior", 33, 3},
		{"NewOrderV3", "order_type", 37, 9},
		{"CancelOrderV2", "side", 5, 2},
		{"SendTake", "side", 5, 2},
	}

	for _, tc := range cases {
		t.Run(tc.fixture+"/"+tc.field, func(t *testing.T) {
			data := fixture(t, tc.fixture)
			data[tc.offset] = tc.value

			_, ok := Decode(data)
			assert.False(t, ok)

			_, err := DecodeDetailed(data)
			assert.ErrorIs(t, err, common.ErrInvalidOrdinal)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

// 高位字节非零的 u32 序号同样越界
func TestDecodeOrdinalHighBytes(t *testing.T) {
	data := fixture(t, "NewOrder")
	data[8] = 0x01 // side 的最高字节
	_, ok := Decode(data)
	assert.False(t, ok)
}

func TestDecodeTruncated(t *testing.T) {
	for _, tc := range validFixtures {
		payload := len(tc.data) - headerSize
		if payload == 0 {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			for cut := 1; cut <= payload; cut++ {
				data := tc.data[:len(tc.data)-cut]
				var (
					ix Instruction
					ok bool
				)
				require.NotPanics(t, func() { ix, ok = Decode(data) })
				assert.False(t, ok, "cut=%d", cut)
				assert.Nil(t, ix)

				_, err := DecodeDetailed(data)
				assert.ErrorIs(t, err, ErrPayloadLength)
			}
		})
	}
}

func TestDecodeOverLength(t *testing.T) {
	for _, tc := range validFixtures {
		t.Run(tc.name, func(t *testing.T) {
			data := append(append([]byte{}, tc.data...), 0x00)
			ix, ok := Decode(data)
			assert.False(t, ok)
			assert.Nil(t, ix)

			_, err := DecodeDetailed(data)
			assert.True(t, errors.Is(err, ErrPayloadLength))
		})
	}
}

func TestTagMetadata(t *testing.T) {
	assert.Len(t, Tags(), 18)
	assert.False(t, Tag(18).Valid())
	assert.Equal(t, -1, Tag(18).PayloadSize())
	assert.Equal(t, "CancelOrderByClientId", TagCancelOrderByClientID.String())
	assert.Equal(t, "CancelOrderByClientIdV2", TagCancelOrderByClientIDV2.String())

	seen := map[string]bool{}
	for _, tag := range Tags() {
		name := tag.String()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate entity type %s", name)
		seen[name] = true
	}
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "Bid", SideBid.String())
	assert.Equal(t, "Ask", SideAsk.String())
	assert.Equal(t, "", Side(2).String())
	assert.Equal(t, "ImmediateOrCancel", OrderTypeImmediateOrCancel.String())
	assert.Equal(t, "DecrementTake", SelfTradeDecrementTake.String())
	assert.Equal(t, "AbortTransaction", SelfTradeAbortTransaction.String())
}

func TestTagByName(t *testing.T) {
	for _, tag := range Tags() {
		got, ok := TagByName(tag.String())
		require.True(t, ok)
		assert.Equal(t, tag, got)
	}
	_, ok := TagByName("CancelOrderByClientID")
	assert.False(t, ok)

	code, ok := EntityTypeCode("SendTake")
	assert.True(t, ok)
	assert.Equal(t, uint32(13), code)
}
