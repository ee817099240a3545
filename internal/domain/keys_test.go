package domain

import "testing"

func TestMustPublicKey_Copies(t *testing.T) {
	b := make([]byte, KeySize)
	for i := range b {
		b[i] = byte(i)
	}
	k := MustPublicKey(b)
	b[0] = 0xff
	if k[0] != 0 || k[31] != 31 {
		t.Fatalf("unexpected key bytes: %x", k)
	}
	s := MustSecretKey(k.Slice())
	if s[31] != 31 {
		t.Fatalf("unexpected secret bytes: %x", s)
	}
}

func TestMustKey_PanicsOnWrongLength(t *testing.T) {
	for name, fn := range map[string]func(){
		"public": func() { MustPublicKey(make([]byte, KeySize-1)) },
		"secret": func() { MustSecretKey(make([]byte, KeySize+1)) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}
