package queue

import "testing"

func TestNextInsertKey(t *testing.T) {
	if key := NextInsertKey(0, true); key != BaseSortKey {
		t.Fatalf("ожидали %d для пустой очереди, получили %d", BaseSortKey, key)
	}
	if key := NextInsertKey(300000, false); key != 400000 {
		t.Fatalf("ожидали 400000, получили %d", key)
	}
	if key := NextInsertKey(BaseSortKey, false); key != 200000 {
		t.Fatalf("ожидали 200000, получили %d", key)
	}
}

func TestShuffleKey(t *testing.T) {
	cases := map[int]int{
		0: 200000,
		1: 300000,
		4: 600000,
	}
	for index, expected := range cases {
		if key := ShuffleKey(index); key != expected {
			t.Fatalf("ожидали %d для индекса %d, получили %d", expected, index, key)
		}
	}
}
