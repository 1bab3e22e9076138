package source

import "math/rand"

// DefaultAdapters wires every built-in site adapter over a shared HTTP client.
// Adapters that down-sample over-fetched listings share one rng so a seeded
// run stays reproducible.
func DefaultAdapters(client *Client, rng *rand.Rand) []Adapter {
	return []Adapter{
		NewPornhub(client),
		NewEPorner(client),
		NewXVideos(client, rng),
		NewXHamster(client),
		NewXNXX(client),
		NewSpankBang(client),
		NewXXXGFPorn(client),
		NewVip91(client),
		NewSexCom(client),
		NewXView(client),
		NewBeeg(client),
		NewSmutba(client),
		NewMMDHub(client),
		NewXFreeHD(client),
		NewNoodleMagazine(client, rng),
		NewPornTrex(client, rng),
		NewHanime(client),
		NewRule34Video(client, rng),
		NewHentaiGem(client, rng),
		NewThreeDPorn(client),
		NewThreeDPornDude(client, rng),
		NewMissAV(client),
		NewHQPorner(client),
	}
}
