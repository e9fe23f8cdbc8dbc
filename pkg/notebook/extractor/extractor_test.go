package extractor

import (
	"reflect"
	"testing"

	"github.com/carter293/reactive-notebook/pkg/notebook"
)

func TestPython_AssignRecordsReadThenWrite(t *testing.T) {
	t.Parallel()
	reads, writes := Python("y = x + 1")
	if !reflect.DeepEqual(reads, []string{"x"}) {
		t.Errorf("reads = %v, want [x]", reads)
	}
	if !reflect.DeepEqual(writes, []string{"y"}) {
		t.Errorf("writes = %v, want [y]", writes)
	}
}

func TestPython_LocalWriteShadowsLaterRead(t *testing.T) {
	t.Parallel()
	reads, writes := Python("x = 1\ny = x + 1")
	if len(reads) != 0 {
		t.Errorf("reads = %v, want none (x is written locally first)", reads)
	}
	if !reflect.DeepEqual(writes, []string{"x", "y"}) {
		t.Errorf("writes = %v, want [x y]", writes)
	}
}

func TestPython_AugAssignReadsItsOwnTarget(t *testing.T) {
	t.Parallel()
	reads, writes := Python("x += 1")
	if !reflect.DeepEqual(reads, []string{"x"}) {
		t.Errorf("reads = %v, want [x] (augmented assignment reads its target)", reads)
	}
	if !reflect.DeepEqual(writes, []string{"x"}) {
		t.Errorf("writes = %v, want [x]", writes)
	}
}

func TestPython_UnparseableSourceYieldsNoEdges(t *testing.T) {
	t.Parallel()
	reads, writes := Python("x = = =")
	if reads != nil || writes != nil {
		t.Errorf("reads=%v writes=%v, want nil,nil on a syntax error", reads, writes)
	}
}

func TestSQL_ExtractsPlaceholdersAsReadsOnly(t *testing.T) {
	t.Parallel()
	reads, writes := SQL("select * from orders where customer_id = {customer_id} and status = {status}")
	if !reflect.DeepEqual(reads, []string{"customer_id", "status"}) {
		t.Errorf("reads = %v, want [customer_id status]", reads)
	}
	if writes != nil {
		t.Errorf("writes = %v, want nil (SQL cells never write)", writes)
	}
}

func TestExtract_DispatchesByKind(t *testing.T) {
	t.Parallel()
	reads, _ := Extract(notebook.KindSQL, "select {a}")
	if !reflect.DeepEqual(reads, []string{"a"}) {
		t.Errorf("SQL dispatch reads = %v, want [a]", reads)
	}

	reads, writes := Extract(notebook.KindPython, "a = 1")
	if len(reads) != 0 || !reflect.DeepEqual(writes, []string{"a"}) {
		t.Errorf("Python dispatch reads=%v writes=%v, want [],[a]", reads, writes)
	}
}
