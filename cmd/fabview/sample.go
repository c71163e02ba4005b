// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

const sampleSource = "sample"

// rfq is a request for quotation, the record type of the built-in sample.
type rfq struct {
	Number   string
	Supplier string
	Material string
	Status   string
	Amount   float64
	Due      time.Time
	Buyer    string
}

var rfqStatuses = []string{"PENDING", "APPROVED", "REJECTED", "DRAFT"}

func sampleRFQs() []rfq {
	suppliers := []string{"Nordic Steel AB", "Baltic Metals", "Sörmland Timber", "Vänern Concrete", "Göta Glass"}
	materials := []string{"Steel beam", "Copper wire", "Timber", "Ready-mix concrete", "Float glass", "Steel plate", "Aluminium sheet"}
	buyers := []string{"A. Lind", "M. Berg", "K. Holm"}
	first := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	out := make([]rfq, 0, 42)
	for i := range 42 {
		out = append(out, rfq{
			Number:   fmt.Sprintf("RFQ-2025-%03d", i+1),
			Supplier: suppliers[i%len(suppliers)],
			Material: materials[(i*3)%len(materials)],
			Status:   rfqStatuses[(i/2)%len(rfqStatuses)],
			Amount:   float64((i*7919)%9000+500) + float64(i%4)*0.25,
			Due:      first.AddDate(0, 0, 7*i),
			Buyer:    buyers[i%len(buyers)],
		})
	}
	return out
}

func rfqColumns() []dataview.Column[rfq] {
	return []dataview.Column[rfq]{
		{ID: "number", Header: "RFQ", Accessor: func(r rfq) any { return r.Number }, DisableHiding: true},
		{ID: "supplier", Header: "Supplier", Accessor: func(r rfq) any { return r.Supplier }},
		{ID: "material", Header: "Material", Accessor: func(r rfq) any { return r.Material }},
		{
			ID: "status", Header: "Status",
			Accessor:      func(r rfq) any { return r.Status },
			FilterType:    datatable.FilterMultiSelect,
			FilterOptions: dataview.Options(rfqStatuses...),
		},
		{
			ID: "amount", Header: "Amount", Type: datatable.TypeFloat,
			Accessor: func(r rfq) any { return r.Amount },
			Cell:     func(v any, _ rfq) string { return formatAmount(v) },
		},
		{
			ID: "due", Header: "Due", Type: datatable.TypeDate,
			Accessor: func(r rfq) any { return r.Due },
		},
		{
			ID: "buyer", Header: "Buyer",
			Accessor:      func(r rfq) any { return r.Buyer },
			FilterType:    datatable.FilterSelect,
			FilterOptions: dataview.Options("A. Lind", "M. Berg", "K. Holm"),
		},
	}
}

func formatAmount(v any) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return "$" + strconv.FormatFloat(f, 'f', 2, 64)
}

func describeRFQ(r rfq) [][2]string {
	return [][2]string{
		{"RFQ", r.Number},
		{"Supplier", r.Supplier},
		{"Material", r.Material},
		{"Status", r.Status},
		{"Amount", formatAmount(r.Amount)},
		{"Due", r.Due.Format(time.DateOnly)},
		{"Buyer", r.Buyer},
	}
}
