package metrics

import "errors"

var errNoAggregate = errors.New("no aggregate cpu line in stat file")
