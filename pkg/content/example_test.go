package content_test

import (
	"fmt"

	"github.com/reactiveshots/portfolio/pkg/content"
)

func ExampleNormalizeBlur() {
	fmt.Println(content.NormalizeBlur("L6PZfSi_.AyE"))
	fmt.Println(content.NormalizeBlur("data:image/png;base64,iVBOR"))
	// Output:
	// data:image/jpeg;base64,L6PZfSi_.AyE
	// data:image/png;base64,iVBOR
}

func ExampleConfig_AlbumURL() {
	cfg := content.DefaultConfig()
	cfg.Secrets = map[string]string{"cars": "token"}

	u, _ := cfg.AlbumURL("cars")
	fmt.Println(u)
	// Output:
	// https://aura-api.reactiveshots.com/api/album/geeth/cars/?secret=token
}
