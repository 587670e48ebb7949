package protocol

import "testing"

func TestAddrDecoding(t *testing.T) {
	a := MakeAddr(0xA, 0xB)
	if a.Home() != 0xA {
		t.Fatalf("Home() = %d, want 0xA", a.Home())
	}
	if a.Offset() != 0xB {
		t.Fatalf("Offset() = %d, want 0xB", a.Offset())
	}
	if got, want := a.Slot(), 0xB%4; got != want {
		t.Fatalf("Slot() = %d, want %d", got, want)
	}
}

func TestMessageKinds(t *testing.T) {
	msgs := []Message{
		NewReadRequest(0, 0x10),
		NewWriteRequest(0, 0x10, 5),
		NewReplyRD(1, 0x10, 5, S),
		NewReplyWR(1, 0x10),
		NewReplyID(1, 0x10, 0),
		NewInv(0, 0x10),
		NewUpgrade(0, 0x10),
		NewWritebackInv(1, 0x10, 5, 3),
		NewWritebackInt(1, 0x10, 3),
		NewFlush(0, 0x10, 5, 3),
		NewFlushInvAck(0, 0x10, 5, 3),
		NewEvictShared(0, 0x10, 0),
		NewEvictModified(0, 0x10, 9),
	}
	want := []TxType{
		ReadRequestType, WriteRequestType, ReplyRDType, ReplyWRType, ReplyIDType,
		InvType, UpgradeType, WritebackInvType, WritebackIntType, FlushType,
		FlushInvAckType, EvictSharedType, EvictModifiedType,
	}
	for i, m := range msgs {
		if m.Kind() != want[i] {
			t.Errorf("msgs[%d].Kind() = %v, want %v", i, m.Kind(), want[i])
		}
		if m.Address() != Addr(0x10) {
			t.Errorf("msgs[%d].Address() = %v, want 0x10", i, m.Address())
		}
	}
}
