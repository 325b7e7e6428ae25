package domain

import "testing"

func TestGetValidNumchanValues(t *testing.T) {
	cases := []struct {
		bandwidth int
		coherent  bool
		want      []int
	}{
		{100, true, []int{64, 128, 256, 512}},
		{200, true, []int{128, 256, 512, 1024}},
		{800, true, []int{128, 256, 512, 1024, 2048}},
		{1500, true, []int{512, 1024, 2048, 4096}},
		{100, false, []int{1024, 2048, 4096, 8192, 16384}},
		{200, false, []int{1024, 2048, 8192}},
		{800, false, []int{2048, 4096, 8192, 16384}},
		{1500, false, []int{4096, 8192, 16384, 32768}},
	}

	for _, tc := range cases {
		got := GetValidNumchanValues(tc.bandwidth, tc.coherent)
		if len(got) != len(tc.want) {
			t.Errorf("bandwidth=%d coherent=%t: got %v, want %v", tc.bandwidth, tc.coherent, got, tc.want)
			continue
		}

		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("bandwidth=%d coherent=%t: got %v, want %v", tc.bandwidth, tc.coherent, got, tc.want)
				break
			}
		}
	}
}

func TestGetRecommendedScale(t *testing.T) {
	t.Run("returns table entries exactly", func(t *testing.T) {
		cases := []struct {
			bandwidth int
			numchan   int
			coherent  bool
			want      int
		}{
			{800, 512, true, 1585},
			{200, 8192, false, 1045},
			{100, 64, true, 2012},
			{1500, 4096, false, 775},
			{1500, 1024, true, 1448},
		}

		for _, tc := range cases {
			got := GetRecommendedScale(tc.bandwidth, tc.numchan, tc.coherent)
			if got != tc.want {
				t.Errorf("scale(%d, %d, %t) = %d, want %d",
					tc.bandwidth, tc.numchan, tc.coherent, got, tc.want)
			}
		}
	})

	t.Run("panics on a combination the hardware lacks", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for missing table entry")
			}
		}()

		GetRecommendedScale(200, 4096, false)
	})
}

func TestGetValidAcclenValues(t *testing.T) {
	t.Run("coherent acclens are fixed", func(t *testing.T) {
		got := GetValidAcclenValues(true)
		want := []int{4, 8, 16}

		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("incoherent acclens are powers of two up to 1024", func(t *testing.T) {
		got := GetValidAcclenValues(false)
		if len(got) != 11 {
			t.Fatalf("got %d values, want 11", len(got))
		}

		if got[0] != 1 || got[len(got)-1] != 1024 {
			t.Errorf("range = [%d, %d], want [1, 1024]", got[0], got[len(got)-1])
		}

		for i := 1; i < len(got); i++ {
			if got[i] != 2*got[i-1] {
				t.Errorf("not doubling at index %d: %v", i, got)
			}
		}
	})
}

func TestEveryNumchanHasScale(t *testing.T) {
	// Every channel count the tables advertise must resolve to a scale
	// without panicking.
	for _, bandwidth := range []int{100, 200, 800, 1500} {
		for _, coherent := range []bool{true, false} {
			for _, numchan := range GetValidNumchanValues(bandwidth, coherent) {
				if scale := GetRecommendedScale(bandwidth, numchan, coherent); scale <= 0 {
					t.Errorf("scale(%d, %d, %t) = %d", bandwidth, numchan, coherent, scale)
				}
			}
		}
	}
}

func TestBandCatalog(t *testing.T) {
	t.Run("names are in catalog order", func(t *testing.T) {
		want := []string{"350 MHz", "820 MHz", "L-band", "S-band", "UWBR", "C-band", "X-band"}

		got := BandNames()
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("every band bandwidth has table entries", func(t *testing.T) {
		for _, band := range FreqBands {
			if len(GetValidNumchanValues(band.Bandwidth, true)) == 0 {
				t.Errorf("%s: no coherent channel counts for bandwidth %d", band.Label, band.Bandwidth)
			}

			if len(GetValidNumchanValues(band.Bandwidth, false)) == 0 {
				t.Errorf("%s: no incoherent channel counts for bandwidth %d", band.Label, band.Bandwidth)
			}
		}
	})

	t.Run("lookup by label", func(t *testing.T) {
		band, ok := BandByLabel("UWBR")
		if !ok {
			t.Fatal("UWBR not found")
		}

		if band.Receiver != "Rcvr_2500" {
			t.Errorf("receiver = %s, want Rcvr_2500", band.Receiver)
		}

		if len(band.WindowCenters()) != 3 {
			t.Errorf("windows = %v, want 3 entries", band.WindowCenters())
		}

		if _, ok := BandByLabel("K-band"); ok {
			t.Error("unexpected hit for unknown band")
		}
	})
}
