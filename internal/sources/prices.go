package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const priceSourceName = "prices"

type llamaPrices struct {
	Coins map[string]struct {
		Price  float64 `json:"price"`
		Symbol string  `json:"symbol"`
	} `json:"coins"`
}

// LlamaPriceSource prices assets through the DefiLlama coins API. Assets map
// a token symbol to a coin id such as "coingecko:wilder-world".
type LlamaPriceSource struct {
	client  *upstreamClient
	baseURL string
	assets  map[string]string
	logger  providers.Logger
}

func NewPriceSource(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) PriceSource {
	assets := make(map[string]string, len(conf.Prices.Assets))
	for symbol, coin := range conf.Prices.Assets {
		// viper lowercases map keys
		assets[strings.ToLower(symbol)] = coin
	}
	return &LlamaPriceSource{
		client:  newUpstreamClient(priceSourceName, conf.Aggregation.UpstreamTimeout, structures.RateLimit{}, logger, metrics),
		baseURL: strings.TrimRight(conf.Prices.BaseURL, "/"),
		assets:  assets,
		logger:  logger,
	}
}

func (p *LlamaPriceSource) GetPrice(ctx context.Context, asset string) float64 {
	coin, ok := p.assets[strings.ToLower(asset)]
	if !ok {
		p.logger.Warnf(providers.TypeFetch, "prices: no coin id configured for %q", asset)
		return 0
	}

	var resp llamaPrices
	endpoint := fmt.Sprintf("%s/prices/current/%s", p.baseURL, url.PathEscape(coin))
	if err := p.client.getJSON(ctx, endpoint, nil, &resp); err != nil {
		p.logger.Warnf(providers.TypeFetch, "prices: %s: %s", asset, err)
		return 0
	}
	quote, ok := resp.Coins[coin]
	if !ok {
		p.logger.Warnf(providers.TypeFetch, "prices: %s missing from response", coin)
		return 0
	}
	return quote.Price
}
