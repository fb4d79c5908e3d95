package zoned

import "testing"

func zoneConfFor(t *testing.T, name string) ZoneConf {
	t.Helper()
	return ZoneConf{
		Name: name,
		File: "/z/" + name + "txt",
		Db:   writeTempCompiledFile(t),
	}
}

func openFnReturning(z *Zone) OpenCompiledZoneFunc {
	return func(string) (CompiledZoneReader, error) {
		return &fakeReader{source: "/z/ex.txt", zone: z}, nil
	}
}

func TestUpdateDBFromConfigFreshLoad(t *testing.T) {
	ns := NewNameServer()
	zc := zoneConfFor(t, "example.com.")

	old, err := UpdateDBFromConfig(ns, []ZoneConf{zc}, openFnReturning(fakeZoneWithSOA("example.com.")))
	if err != nil {
		t.Fatalf("UpdateDBFromConfig: %v", err)
	}
	if old.Len() != 0 {
		t.Errorf("old (pre-update) db should have been empty, got %d zones", old.Len())
	}

	z, ok := ns.ZoneDB().FindZone("example.com.")
	if !ok {
		t.Fatal("example.com. should be present after fresh load")
	}
	if z.Version == 0 {
		t.Error("z.Version should be stamped")
	}
	if ns.Metrics.ZonesLoaded == nil {
		t.Fatal("Metrics.ZonesLoaded should be initialized")
	}
}

func TestUpdateDBFromConfigCarriesOverUnchangedZone(t *testing.T) {
	ns := NewNameServer()
	zc := zoneConfFor(t, "example.com.")

	if _, err := UpdateDBFromConfig(ns, []ZoneConf{zc}, openFnReturning(fakeZoneWithSOA("example.com."))); err != nil {
		t.Fatalf("first UpdateDBFromConfig: %v", err)
	}
	first, _ := ns.ZoneDB().FindZone("example.com.")

	reloadCalls := 0
	openFn := func(string) (CompiledZoneReader, error) {
		reloadCalls++
		return &fakeReader{source: "/z/ex.txt", zone: fakeZoneWithSOA("example.com.")}, nil
	}

	if _, err := UpdateDBFromConfig(ns, []ZoneConf{zc}, openFn); err != nil {
		t.Fatalf("second UpdateDBFromConfig: %v", err)
	}
	second, _ := ns.ZoneDB().FindZone("example.com.")

	if reloadCalls != 0 {
		t.Errorf("openFn called %d times, want 0: file mtime did not advance, should carry over", reloadCalls)
	}
	if first == second {
		t.Error("carry-over should publish a shallow copy, not mutate the previously published zone in place")
	}
	if first.XfrIn != second.XfrIn {
		t.Error("carry-over should keep the same AXFR-IN state (and its scheduler events) across reconciliations")
	}
}

func TestUpdateDBFromConfigDropsUnconfiguredZone(t *testing.T) {
	ns := NewNameServer()
	zc := zoneConfFor(t, "example.com.")
	if _, err := UpdateDBFromConfig(ns, []ZoneConf{zc}, openFnReturning(fakeZoneWithSOA("example.com."))); err != nil {
		t.Fatalf("first UpdateDBFromConfig: %v", err)
	}

	if _, err := UpdateDBFromConfig(ns, nil, openFnReturning(nil)); err != nil {
		t.Fatalf("second UpdateDBFromConfig: %v", err)
	}

	if _, ok := ns.ZoneDB().FindZone("example.com."); ok {
		t.Error("zone dropped from config should no longer be in the published db")
	}
}

func TestUpdateDBFromConfigRebuildsACLsAndArmsAxfrIn(t *testing.T) {
	ns := NewNameServer()
	zc := zoneConfFor(t, "example.com.")
	zc.ACL.XfrIn = []RemoteConf{{Family: "ip4", Address: "192.0.2.53", Port: 0}}

	z := fakeZoneWithSOA("example.com.")
	if _, err := UpdateDBFromConfig(ns, []ZoneConf{zc}, openFnReturning(z)); err != nil {
		t.Fatalf("UpdateDBFromConfig: %v", err)
	}

	got, _ := ns.ZoneDB().FindZone("example.com.")
	if got.ACL.XfrIn.Empty() {
		t.Error("XfrIn ACL should be rebuilt from config")
	}
	if got.XfrIn.Master == nil || got.XfrIn.Master.Address != "192.0.2.53" {
		t.Error("AXFR-IN master should be set from the head xfr_in ACL rule")
	}
	if got.XfrIn.State != PhaseRefreshing {
		t.Errorf("State = %v, want REFRESHING once a master is configured", got.XfrIn.State)
	}

	ns.Sched.Stop()
}
