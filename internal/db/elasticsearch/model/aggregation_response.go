package model

type EsAggregationResponse struct {
	Took         int                         `json:"took"`
	TimedOut     bool                        `json:"timed_out"`
	Aggregations map[string]TermsAggregation `json:"aggregations"`
}

type TermsAggregation struct {
	DocCountErrorUpperBound int      `json:"doc_count_error_upper_bound"`
	SumOtherDocCount        int      `json:"sum_other_doc_count"`
	Buckets                 []Bucket `json:"buckets"`
}

type Bucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}
