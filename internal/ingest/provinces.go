package ingest

// Provinces is the list of provinces queried by default, spelled the way the
// upstream sources expect them
var Provinces = []string{
	"Amnat Charoen", "Ang Thong", "Bangkok", "Buriram", "Chachoengsao",
	"Chai Nat", "Chaiyaphum", "Changwat Bueng Kan", "Changwat Ubon Ratchathani",
	"Chanthaburi", "Chiang Mai", "Chiang Rai", "Chon Buri", "Chumphon", "Kalasin",
	"Kamphaeng Phet", "Kanchanaburi", "Khon Kaen", "Krabi", "Lampang", "Lamphun",
	"Loei", "Lopburi", "Mae Hong Son", "Maha Sarakham", "Mukdahan", "Nakhon Nayok",
	"Nakhon Pathom", "Nakhon Phanom", "Nakhon Ratchasima", "Nakhon Sawan",
	"Nakhon Si Thammarat", "Nan", "Narathiwat", "Nong Bua Lamphu", "Nong Khai",
	"Nonthaburi", "Pathum Thani", "Pattani", "Phangnga", "Phatthalung", "Phayao",
	"Phetchabun", "Phetchaburi", "Phichit", "Phitsanulok", "Phra Nakhon Si Ayutthaya",
	"Phrae", "Phuket", "Prachin Buri", "Prachuap Khiri Khan", "Ranong", "Ratchaburi",
	"Rayong", "Roi Et", "Sa Kaeo", "Sakon Nakhon", "Samut Prakan", "Samut Sakhon",
	"Samut Songkhram", "Sara Buri", "Satun", "Sing Buri", "Sisaket", "Songkhla",
	"Sukhothai", "Suphan Buri", "Surat Thani", "Surin", "Tak", "Trang", "Trat",
	"Udon Thani", "Uthai Thani", "Uttaradit", "Yala", "Yasothon",
}
